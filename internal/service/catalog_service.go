package service

import (
	"regexp"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/model"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// TopicSlug turns a topic display name into the identifier used to address
// its question file: anything but ASCII letters, digits and spaces is dropped,
// then runs of whitespace become underscores.
func TopicSlug(name string) string {
	return whitespace.ReplaceAllString(nonSlugChars.ReplaceAllString(name, ""), "_")
}

type sectionDef struct {
	code   string
	name   string
	topics []string
}

var mockTestSections = []sectionDef{
	{
		code: "VARC",
		name: "Verbal Ability & Reading Comprehension",
		topics: []string{
			"Reading Comprehension",
			"Para Jumbles",
			"Para Summary",
			"Odd Sentence Out",
		},
	},
	{
		code: "DILR",
		name: "Data Interpretation & Logical Reasoning",
		topics: []string{
			"Table & Line Graph",
			"Pie Chart & Bar Graph",
			"Mixed Graph",
			"Missing Data",
			"Data Sufficiency",
			"Arrangement",
			"Number‑Based Reasoning",
			"Set Theory",
			"Games & Tournaments",
		},
	},
	{
		code: "QA",
		name: "Quantitative Ability",
		topics: []string{
			"Averages",
			"Profit & Loss",
			"Ratio & Proportion",
			"Time & Work",
			"Geometry & Mensuration",
			"Coordinate Geometry",
			"Function & Graph",
			"Sequence & Series",
			"Inequalities",
			"Quadratic & Other Equations",
			"Logarithms",
			"Permutations & Combinations",
			"Probability",
			"Set Theory",
		},
	},
}

// CatalogService lists the mock-test sections and topics.
type CatalogService struct {
	sections []model.MockTestSection
}

// NewCatalogService builds the catalogue with precomputed slugs.
func NewCatalogService() *CatalogService {
	sections := make([]model.MockTestSection, 0, len(mockTestSections))
	for _, def := range mockTestSections {
		topics := make([]model.MockTestTopic, 0, len(def.topics))
		for _, name := range def.topics {
			topics = append(topics, model.MockTestTopic{Name: name, Slug: TopicSlug(name)})
		}
		sections = append(sections, model.MockTestSection{
			Code:        def.code,
			SectionName: def.name,
			Topics:      topics,
		})
	}
	return &CatalogService{sections: sections}
}

// Sections returns the catalogue in display order.
func (s *CatalogService) Sections() []model.MockTestSection {
	return s.sections
}

// Section looks up one section by code, case-insensitively.
func (s *CatalogService) Section(code string) (model.MockTestSection, bool) {
	for _, sec := range s.sections {
		if strings.EqualFold(sec.Code, code) {
			return sec, true
		}
	}
	return model.MockTestSection{}, false
}
