package model

// College is an institute accepting CAT scores.
type College struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	CATCutoff           string   `json:"cat_cutoff"`
	Fees                string   `json:"fees"`
	AvgPackage          string   `json:"avg_package"`
	TopCompanies        []string `json:"top_companies"`
	PlacementHighlights []string `json:"placement_highlights"`
	Website             string   `json:"website"`
}
