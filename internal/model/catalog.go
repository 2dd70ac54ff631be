package model

// MockTestTopic is a topic within a mock-test section.
type MockTestTopic struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MockTestSection is one CAT section with its practice topics.
type MockTestSection struct {
	Code        string          `json:"code"`
	SectionName string          `json:"section_name"`
	Topics      []MockTestTopic `json:"topics"`
}
