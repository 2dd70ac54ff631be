package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/catprepedge/catprep-backend/internal/model"
)

// loadJSONFile decodes a JSON array file into a slice.
func loadJSONFile[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return items, nil
}

// ResourceRepository serves the library metadata file. It is read once at
// startup and never written.
type ResourceRepository struct {
	items []model.Resource
}

// NewResourceRepository loads the library metadata from path.
func NewResourceRepository(path string) (*ResourceRepository, error) {
	items, err := loadJSONFile[model.Resource](path)
	if err != nil {
		return nil, err
	}
	return NewResourceRepositoryFrom(items), nil
}

// NewResourceRepositoryFrom wraps an in-memory list.
func NewResourceRepositoryFrom(items []model.Resource) *ResourceRepository {
	return &ResourceRepository{items: items}
}

// All returns a copy of every resource in file order.
func (r *ResourceRepository) All() []model.Resource {
	out := make([]model.Resource, len(r.items))
	copy(out, r.items)
	return out
}

// CollegeRepository serves the colleges data file.
type CollegeRepository struct {
	items []model.College
	byID  map[string]int
}

// NewCollegeRepository loads colleges from path.
func NewCollegeRepository(path string) (*CollegeRepository, error) {
	items, err := loadJSONFile[model.College](path)
	if err != nil {
		return nil, err
	}
	return NewCollegeRepositoryFrom(items), nil
}

// NewCollegeRepositoryFrom wraps an in-memory list.
func NewCollegeRepositoryFrom(items []model.College) *CollegeRepository {
	byID := make(map[string]int, len(items))
	for i, c := range items {
		byID[c.ID] = i
	}
	return &CollegeRepository{items: items, byID: byID}
}

// All returns a copy of every college in file order.
func (r *CollegeRepository) All() []model.College {
	out := make([]model.College, len(r.items))
	copy(out, r.items)
	return out
}

// GetByID returns the college with id, or false.
func (r *CollegeRepository) GetByID(id string) (model.College, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.College{}, false
	}
	return r.items[i], true
}
