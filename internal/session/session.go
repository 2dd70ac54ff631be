// Package session implements the in-memory state of one practice test:
// per-question answer status, the question cursor and the countdown.
//
// A Controller is not safe for concurrent use. It is owned by exactly one
// connection and driven from a single goroutine, normally a Runner.
package session

import (
	"errors"
	"sort"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/mathtext"
	"github.com/catprepedge/catprep-backend/internal/model"
)

// DefaultDurationSeconds is the countdown budget of a test.
const DefaultDurationSeconds = 3600

var (
	ErrNoQuestions     = errors.New("session needs at least one question")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrAlreadyRevealed = errors.New("answer already revealed")
	ErrHasOptions      = errors.New("question has options, select one instead")
	ErrUnknownOption   = errors.New("unknown option")
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrExpired         = errors.New("time expired")
	ErrFinished        = errors.New("test already submitted")
)

// Status is the per-question progress state.
type Status string

const (
	StatusNotVisited Status = "not-visited"
	StatusUnanswered Status = "unanswered"
	StatusAnswered   Status = "answered"
	StatusMarked     Status = "marked"
)

// AnswerState is what the user has done with one question.
type AnswerState struct {
	SelectedOption *string `json:"selected_option"`
	IsMarked       bool    `json:"is_marked"`
	Status         Status  `json:"status"`
}

// Controller holds one test session.
type Controller struct {
	questions []model.Question
	answers   []AnswerState
	current   int
	remaining int
	revealed  bool
	expired   bool
	finished  bool

	observers map[int]Observer
	nextObsID int
}

// New starts a session over questions with the given countdown in seconds.
// The first question is current and promoted to unanswered.
func New(questions []model.Question, durationSeconds int) (*Controller, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	answers := make([]AnswerState, len(questions))
	for i := range answers {
		answers[i].Status = StatusNotVisited
	}
	answers[0].Status = StatusUnanswered

	return &Controller{
		questions: questions,
		answers:   answers,
		remaining: durationSeconds,
		observers: make(map[int]Observer),
	}, nil
}

// ─── Accessors ───────────────────────────────────────────────────────

func (c *Controller) Len() int                { return len(c.questions) }
func (c *Controller) CurrentIndex() int       { return c.current }
func (c *Controller) TimeRemaining() int      { return c.remaining }
func (c *Controller) IsRevealed() bool        { return c.revealed }
func (c *Controller) Expired() bool           { return c.expired }
func (c *Controller) Finished() bool          { return c.finished }
func (c *Controller) Current() model.Question { return c.questions[c.current] }

// Answer returns a copy of the answer state at index i.
func (c *Controller) Answer(i int) (AnswerState, error) {
	if i < 0 || i >= len(c.answers) {
		return AnswerState{}, ErrIndexOutOfRange
	}
	a := c.answers[i]
	if a.SelectedOption != nil {
		opt := *a.SelectedOption
		a.SelectedOption = &opt
	}
	return a, nil
}

// Running reports whether answers can still change.
func (c *Controller) Running() bool {
	return !c.expired && !c.finished
}

// ─── Answer mutations ────────────────────────────────────────────────

// SelectOption records key as the answer to the current question and reveals it.
// Once revealed the answer is locked.
func (c *Controller) SelectOption(key string) error {
	if err := c.checkRunning(); err != nil {
		return err
	}
	if c.revealed {
		return ErrAlreadyRevealed
	}
	q := &c.questions[c.current]
	if !q.HasOption(key) {
		return ErrUnknownOption
	}

	opt := key
	a := &c.answers[c.current]
	a.SelectedOption = &opt
	a.IsMarked = false
	a.Status = StatusAnswered
	c.revealed = true

	c.notify(ChangeSelect)
	return nil
}

// RevealAnswer shows the explanation of a free-response question.
func (c *Controller) RevealAnswer() error {
	if err := c.checkRunning(); err != nil {
		return err
	}
	if c.questions[c.current].HasOptions() {
		return ErrHasOptions
	}
	if c.revealed {
		return ErrAlreadyRevealed
	}
	c.revealed = true

	c.notify(ChangeReveal)
	return nil
}

// ToggleMark flips the review mark on the current question.
func (c *Controller) ToggleMark() error {
	if err := c.checkRunning(); err != nil {
		return err
	}

	a := &c.answers[c.current]
	a.IsMarked = !a.IsMarked
	switch {
	case a.IsMarked:
		a.Status = StatusMarked
	case a.SelectedOption != nil:
		a.Status = StatusAnswered
	default:
		a.Status = StatusUnanswered
	}

	c.notify(ChangeMark)
	return nil
}

// ─── Navigation ──────────────────────────────────────────────────────

// GoTo moves the cursor to index. Navigation stays available after expiry.
func (c *Controller) GoTo(index int) error {
	if index < 0 || index >= len(c.questions) {
		return ErrIndexOutOfRange
	}

	c.current = index
	a := &c.answers[index]
	c.revealed = a.SelectedOption != nil
	if a.Status == StatusNotVisited {
		a.Status = StatusUnanswered
	}

	c.notify(ChangeNavigate)
	return nil
}

// Next moves forward one question. It reports false at the last question.
func (c *Controller) Next() bool {
	if c.current >= len(c.questions)-1 {
		return false
	}
	return c.GoTo(c.current+1) == nil
}

// Previous moves back one question. It reports false at the first question.
func (c *Controller) Previous() bool {
	if c.current <= 0 {
		return false
	}
	return c.GoTo(c.current-1) == nil
}

// ─── Time ────────────────────────────────────────────────────────────

// Tick consumes one second. Reaching zero expires the session.
// It reports whether the countdown should keep running.
func (c *Controller) Tick() bool {
	if !c.Running() {
		return false
	}

	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.expired = true
		c.notify(ChangeExpired)
		return false
	}

	c.notify(ChangeTick)
	return true
}

// Submit ends the test early and returns the result.
func (c *Controller) Submit() (Result, error) {
	if c.finished {
		return Result{}, ErrFinished
	}
	c.finished = true

	c.notify(ChangeSubmit)
	return c.Result(), nil
}

func (c *Controller) checkRunning() error {
	if c.finished {
		return ErrFinished
	}
	if c.expired {
		return ErrExpired
	}
	return nil
}

// ─── Derived views ───────────────────────────────────────────────────

// Summary counts questions per status.
type Summary struct {
	Answered   int `json:"answered"`
	Marked     int `json:"marked"`
	Unanswered int `json:"unanswered"`
	NotVisited int `json:"not_visited"`
}

// Total is the number of questions counted.
func (s Summary) Total() int {
	return s.Answered + s.Marked + s.Unanswered + s.NotVisited
}

// ProgressSummary scans the answers and counts each status.
func (c *Controller) ProgressSummary() Summary {
	var s Summary
	for _, a := range c.answers {
		switch a.Status {
		case StatusAnswered:
			s.Answered++
		case StatusMarked:
			s.Marked++
		case StatusUnanswered:
			s.Unanswered++
		default:
			s.NotVisited++
		}
	}
	return s
}

// Result compares selected options against the answer key.
type Result struct {
	Total       int `json:"total"`
	Attempted   int `json:"attempted"`
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	Unattempted int `json:"unattempted"`
}

// Result grades the session locally.
func (c *Controller) Result() Result {
	r := Result{Total: len(c.questions)}
	for i, a := range c.answers {
		if a.SelectedOption == nil {
			continue
		}
		r.Attempted++
		if *a.SelectedOption == c.questions[i].Answer {
			r.Correct++
		} else {
			r.Incorrect++
		}
	}
	r.Unattempted = r.Total - r.Attempted
	return r
}

// OptionView is one rendered option.
type OptionView struct {
	Key  string             `json:"key"`
	Text []mathtext.Segment `json:"text"`
}

// QuestionView is the current question rendered for display.
// Answer and Explanation are only set once the question is revealed.
type QuestionView struct {
	Index          int                `json:"index"`
	ID             int                `json:"id"`
	Section        string             `json:"section"`
	Topic          string             `json:"topic"`
	ImageID        string             `json:"image_id,omitempty"`
	Passage        []mathtext.Segment `json:"passage,omitempty"`
	Prompt         []mathtext.Segment `json:"question"`
	Options        []OptionView       `json:"options"`
	SelectedOption *string            `json:"selected_option"`
	IsMarked       bool               `json:"is_marked"`
	Status         Status             `json:"status"`
	Answer         string             `json:"answer,omitempty"`
	Explanation    []mathtext.Segment `json:"explanation,omitempty"`
}

// Snapshot is a read-only copy of the session handed to observers.
type Snapshot struct {
	CurrentIndex         int          `json:"current_index"`
	Total                int          `json:"total"`
	TimeRemainingSeconds int          `json:"time_remaining_seconds"`
	Revealed             bool         `json:"revealed"`
	Expired              bool         `json:"expired"`
	Finished             bool         `json:"finished"`
	Statuses             []Status     `json:"statuses"`
	Summary              Summary      `json:"summary"`
	Current              QuestionView `json:"current"`
}

// Snapshot copies the current state and renders the current question.
func (c *Controller) Snapshot() Snapshot {
	statuses := make([]Status, len(c.answers))
	for i, a := range c.answers {
		statuses[i] = a.Status
	}

	return Snapshot{
		CurrentIndex:         c.current,
		Total:                len(c.questions),
		TimeRemainingSeconds: c.remaining,
		Revealed:             c.revealed,
		Expired:              c.expired,
		Finished:             c.finished,
		Statuses:             statuses,
		Summary:              c.ProgressSummary(),
		Current:              c.currentView(),
	}
}

func (c *Controller) currentView() QuestionView {
	q := c.questions[c.current]
	a, _ := c.Answer(c.current)

	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	options := make([]OptionView, 0, len(keys))
	for _, k := range keys {
		options = append(options, OptionView{Key: k, Text: mathtext.Render(q.Options[k])})
	}

	v := QuestionView{
		Index:          c.current,
		ID:             q.ID,
		Section:        q.Section,
		Topic:          q.Topic,
		Passage:        mathtext.Render(q.Passage),
		Prompt:         mathtext.Render(q.Prompt),
		Options:        options,
		SelectedOption: a.SelectedOption,
		IsMarked:       a.IsMarked,
		Status:         a.Status,
	}
	if strings.TrimSpace(q.ImageID) != "" {
		v.ImageID = q.ImageID
	}
	if c.revealed {
		v.Answer = q.Answer
		v.Explanation = mathtext.Render(q.Explanation)
	}
	return v
}

