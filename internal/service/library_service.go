package service

import (
	"net/url"
	"sort"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/catprepedge/catprep-backend/internal/response"
)

const (
	defaultLibraryPerPage = 24
	maxLibraryPerPage     = 100
	maxLibraryPage        = 10000
)

// sectionAliases maps friendly section names onto the names used in the metadata.
var sectionAliases = map[string]string{
	"imp books":       "IMP BOOKS",
	"important books": "IMP BOOKS",
	"books":           "IMP BOOKS",
	"pyq":             "PYQs",
	"pyqs":            "PYQs",
	"previous year":   "PYQs",
	"past papers":     "PYQs",
}

// NormaliseSection decodes a section query value and resolves aliases.
// An empty value or "all" means no section filter and returns "".
func NormaliseSection(param string) string {
	decoded, err := url.QueryUnescape(param)
	if err != nil {
		decoded = param
	}
	key := strings.ToLower(strings.TrimSpace(decoded))
	if key == "" || key == "all" {
		return ""
	}
	if alias, ok := sectionAliases[key]; ok {
		return alias
	}
	return key
}

// LibraryService filters the PDF library.
type LibraryService struct {
	repo *repository.ResourceRepository
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(repo *repository.ResourceRepository) *LibraryService {
	return &LibraryService{repo: repo}
}

// List filters resources and hides premium links from roles without access.
func (s *LibraryService) List(f model.LibraryFilter, role model.Role) (*model.LibraryListResponse, *response.Pagination) {
	all := s.repo.All()

	section := NormaliseSection(f.Section)
	query := strings.ToLower(strings.TrimSpace(f.Search))
	tag := strings.TrimSpace(f.Tag)
	if strings.EqualFold(tag, "all") {
		tag = ""
	}

	matched := make([]model.Resource, 0, len(all))
	for _, r := range all {
		if f.PremiumOnly && !r.Premium {
			continue
		}
		if section != "" && !strings.EqualFold(r.Section, section) {
			continue
		}
		if tag != "" && !containsString(r.Tags, tag) {
			continue
		}
		if query != "" && !resourceMatches(r, query) {
			continue
		}
		if r.Premium && !role.CanViewPremium() {
			r.ViewURL = ""
		}
		matched = append(matched, r)
	}

	page, perPage := f.Page, f.PerPage
	if page < 1 {
		page = 1
	}
	if page > maxLibraryPage {
		page = maxLibraryPage
	}
	if perPage < 1 {
		perPage = defaultLibraryPerPage
	}
	if perPage > maxLibraryPerPage {
		perPage = maxLibraryPerPage
	}

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	sections, tags := facets(all)
	resp := &model.LibraryListResponse{
		Resources: matched[start:end],
		Sections:  sections,
		Tags:      tags,
	}
	return resp, response.NewPagination(page, perPage, len(matched))
}

func resourceMatches(r model.Resource, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Section), query) {
		return true
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

// facets returns the sections in first-seen order and the sorted tag set.
func facets(all []model.Resource) ([]string, []string) {
	sections := []string{}
	seenSection := map[string]bool{}
	tagSet := map[string]bool{}
	for _, r := range all {
		if !seenSection[r.Section] {
			seenSection[r.Section] = true
			sections = append(sections, r.Section)
		}
		for _, t := range r.Tags {
			tagSet[t] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return sections, tags
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
