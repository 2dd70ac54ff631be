package model

// Question is one practice question as served by the question data source.
// Field names follow the published JSON files, including the capitalised ImageID.
type Question struct {
	ID          int               `json:"id"`
	Passage     string            `json:"passage,omitempty"`
	ImageID     string            `json:"ImageID,omitempty"`
	Prompt      string            `json:"question"`
	Options     map[string]string `json:"options,omitempty"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation,omitempty"`
	Topic       string            `json:"topic"`
	Section     string            `json:"section"`
}

// HasOptions reports whether the question is multiple choice.
func (q *Question) HasOptions() bool {
	return len(q.Options) > 0
}

// HasOption reports whether key is one of the question's option keys.
func (q *Question) HasOption(key string) bool {
	_, ok := q.Options[key]
	return ok
}

// QuestionQuery is the query string for loading a question set.
type QuestionQuery struct {
	Section string `form:"section"`
	Topic   string `form:"topic"`
}
