package model

// Resource is one PDF in the content library.
type Resource struct {
	Title   string   `json:"title"`
	Section string   `json:"section"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
	ViewURL string   `json:"view_url,omitempty"`
	Premium bool     `json:"premium"`
}

// LibraryFilter narrows a library listing.
type LibraryFilter struct {
	Search      string
	Section     string
	Tag         string
	// PremiumOnly keeps only premium resources.
	PremiumOnly bool
	Page        int
	PerPage     int
}

// LibraryListResponse is a page of resources plus the facets for filtering.
type LibraryListResponse struct {
	Resources []Resource `json:"resources"`
	Sections  []string   `json:"sections"`
	Tags      []string   `json:"tags"`
}
