package service

import (
	"errors"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
)

var ErrCollegeNotFound = errors.New("college not found")

// CollegeService serves college information pages.
type CollegeService struct {
	repo *repository.CollegeRepository
}

// NewCollegeService creates a new CollegeService.
func NewCollegeService(repo *repository.CollegeRepository) *CollegeService {
	return &CollegeService{repo: repo}
}

// List returns colleges whose name, location or recruiters contain search,
// optionally restricted to an exact location.
func (s *CollegeService) List(search, location string) []model.College {
	query := strings.ToLower(strings.TrimSpace(search))
	location = strings.TrimSpace(location)

	out := []model.College{}
	for _, c := range s.repo.All() {
		if location != "" && c.Location != location {
			continue
		}
		if query != "" && !collegeMatches(c, query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Locations returns the distinct college locations in file order.
func (s *CollegeService) Locations() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range s.repo.All() {
		if !seen[c.Location] {
			seen[c.Location] = true
			out = append(out, c.Location)
		}
	}
	return out
}

// Get returns one college.
func (s *CollegeService) Get(id string) (model.College, error) {
	c, ok := s.repo.GetByID(id)
	if !ok {
		return model.College{}, ErrCollegeNotFound
	}
	return c, nil
}

func collegeMatches(c model.College, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) ||
		strings.Contains(strings.ToLower(c.Location), query) {
		return true
	}
	for _, company := range c.TopCompanies {
		if strings.Contains(strings.ToLower(company), query) {
			return true
		}
	}
	return false
}
