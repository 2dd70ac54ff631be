package session

import (
	"testing"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcq(id int, answer string) model.Question {
	return model.Question{
		ID:          id,
		Prompt:      "Question $x$",
		Options:     map[string]string{"a": "one", "b": "two", "c": "three", "d": "four"},
		Answer:      answer,
		Explanation: "Because $x = 1$",
		Topic:       "Averages",
		Section:     "QA",
	}
}

func freeResponse(id int) model.Question {
	return model.Question{
		ID:          id,
		Prompt:      "Type in the answer",
		Answer:      "42",
		Explanation: "It is 42",
		Topic:       "Averages",
		Section:     "QA",
	}
}

func newSession(t *testing.T, qs ...model.Question) *Controller {
	t.Helper()
	c, err := New(qs, DefaultDurationSeconds)
	require.NoError(t, err)
	return c
}

func answerAt(t *testing.T, c *Controller, i int) AnswerState {
	t.Helper()
	a, err := c.Answer(i)
	require.NoError(t, err)
	return a
}

func TestNew_InitialState(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"), mcq(3, "c"))

	assert.Equal(t, 0, c.CurrentIndex())
	assert.Equal(t, 3600, c.TimeRemaining())
	assert.False(t, c.IsRevealed())
	assert.Equal(t, StatusUnanswered, answerAt(t, c, 0).Status)
	assert.Equal(t, StatusNotVisited, answerAt(t, c, 1).Status)
	assert.Equal(t, StatusNotVisited, answerAt(t, c, 2).Status)
	assert.Equal(t, Summary{Unanswered: 1, NotVisited: 2}, c.ProgressSummary())
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(nil, DefaultDurationSeconds)
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = New([]model.Question{mcq(1, "a")}, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestSelectOption_LocksAnswer(t *testing.T) {
	c := newSession(t, mcq(1, "b"))

	require.NoError(t, c.SelectOption("a"))
	before := answerAt(t, c, 0)
	assert.Equal(t, StatusAnswered, before.Status)
	require.NotNil(t, before.SelectedOption)
	assert.Equal(t, "a", *before.SelectedOption)
	assert.True(t, c.IsRevealed())

	assert.ErrorIs(t, c.SelectOption("b"), ErrAlreadyRevealed)
	assert.Equal(t, before, answerAt(t, c, 0))
	assert.True(t, c.IsRevealed())
}

func TestSelectOption_UnknownKey(t *testing.T) {
	c := newSession(t, mcq(1, "b"))

	assert.ErrorIs(t, c.SelectOption("z"), ErrUnknownOption)
	assert.Nil(t, answerAt(t, c, 0).SelectedOption)
	assert.False(t, c.IsRevealed())
}

func TestRevealAnswer(t *testing.T) {
	c := newSession(t, freeResponse(1), mcq(2, "a"))

	require.NoError(t, c.RevealAnswer())
	assert.True(t, c.IsRevealed())
	assert.Nil(t, answerAt(t, c, 0).SelectedOption)
	assert.Equal(t, StatusUnanswered, answerAt(t, c, 0).Status)
	assert.ErrorIs(t, c.RevealAnswer(), ErrAlreadyRevealed)

	require.NoError(t, c.GoTo(1))
	assert.ErrorIs(t, c.RevealAnswer(), ErrHasOptions)
	assert.False(t, c.IsRevealed())
}

func TestToggleMark_Involution(t *testing.T) {
	for _, answered := range []bool{false, true} {
		c := newSession(t, mcq(1, "a"))
		if answered {
			require.NoError(t, c.SelectOption("c"))
		}
		before := answerAt(t, c, 0)

		require.NoError(t, c.ToggleMark())
		marked := answerAt(t, c, 0)
		assert.True(t, marked.IsMarked)
		assert.Equal(t, StatusMarked, marked.Status)
		assert.Equal(t, before.SelectedOption, marked.SelectedOption)

		require.NoError(t, c.ToggleMark())
		assert.Equal(t, before, answerAt(t, c, 0))
	}
}

func TestGoTo_RestoresRevealAndPromotes(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"), mcq(3, "c"))
	require.NoError(t, c.SelectOption("a"))

	require.NoError(t, c.GoTo(2))
	assert.False(t, c.IsRevealed())
	assert.Equal(t, StatusUnanswered, answerAt(t, c, 2).Status)
	assert.Equal(t, StatusNotVisited, answerAt(t, c, 1).Status)

	require.NoError(t, c.GoTo(0))
	assert.True(t, c.IsRevealed())
}

func TestGoTo_DoesNotMutateAnswers(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"), mcq(3, "c"))
	require.NoError(t, c.SelectOption("d"))
	require.NoError(t, c.ToggleMark())
	want := answerAt(t, c, 0)

	require.NoError(t, c.GoTo(2))
	require.NoError(t, c.GoTo(1))
	require.NoError(t, c.GoTo(0))
	assert.Equal(t, want, answerAt(t, c, 0))
}

func TestGoTo_OutOfRange(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"))
	before := c.Snapshot()

	assert.ErrorIs(t, c.GoTo(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, c.GoTo(2), ErrIndexOutOfRange)
	assert.Equal(t, before, c.Snapshot())
}

func TestNextPrevious_Boundaries(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"))

	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.CurrentIndex())

	assert.True(t, c.Next())
	assert.Equal(t, 1, c.CurrentIndex())
	assert.False(t, c.Next())
	assert.Equal(t, 1, c.CurrentIndex())

	assert.True(t, c.Previous())
	assert.Equal(t, 0, c.CurrentIndex())
}

func TestTick_FloorsAtZeroAndExpires(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"))

	for i := 0; i < DefaultDurationSeconds-1; i++ {
		require.True(t, c.Tick())
	}
	assert.Equal(t, 1, c.TimeRemaining())
	assert.False(t, c.Expired())

	assert.False(t, c.Tick())
	assert.Equal(t, 0, c.TimeRemaining())
	assert.True(t, c.Expired())

	assert.False(t, c.Tick())
	assert.Equal(t, 0, c.TimeRemaining())

	assert.ErrorIs(t, c.SelectOption("a"), ErrExpired)
	assert.ErrorIs(t, c.ToggleMark(), ErrExpired)
	assert.ErrorIs(t, c.RevealAnswer(), ErrExpired)
	assert.NoError(t, c.GoTo(1))
}

func TestSubmit(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"), mcq(3, "c"))
	require.NoError(t, c.SelectOption("a"))
	require.True(t, c.Next())
	require.NoError(t, c.SelectOption("c"))

	res, err := c.Submit()
	require.NoError(t, err)
	assert.Equal(t, Result{Total: 3, Attempted: 2, Correct: 1, Incorrect: 1, Unattempted: 1}, res)

	_, err = c.Submit()
	assert.ErrorIs(t, err, ErrFinished)
	assert.ErrorIs(t, c.ToggleMark(), ErrFinished)
	assert.False(t, c.Tick())
}

func TestProgressSummary_AlwaysSumsToTotal(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"), freeResponse(3), mcq(4, "d"))
	check := func() {
		assert.Equal(t, c.Len(), c.ProgressSummary().Total())
	}

	check()
	require.NoError(t, c.SelectOption("b"))
	check()
	require.NoError(t, c.ToggleMark())
	check()
	require.True(t, c.Next())
	check()
	require.NoError(t, c.GoTo(3))
	check()
	require.NoError(t, c.ToggleMark())
	check()
	require.NoError(t, c.GoTo(2))
	require.NoError(t, c.RevealAnswer())
	check()
}

func TestScenario_ThreeQuestions(t *testing.T) {
	c := newSession(t, mcq(1, "b"), mcq(2, "a"), mcq(3, "c"))

	require.NoError(t, c.SelectOption("a"))
	assert.Equal(t, StatusAnswered, answerAt(t, c, 0).Status)
	assert.True(t, c.IsRevealed())
	assert.ErrorIs(t, c.SelectOption("b"), ErrAlreadyRevealed)
	assert.Equal(t, "a", *answerAt(t, c, 0).SelectedOption)

	require.True(t, c.Next())
	require.NoError(t, c.ToggleMark())
	assert.Equal(t, StatusMarked, answerAt(t, c, 1).Status)

	require.NoError(t, c.GoTo(0))
	assert.True(t, c.IsRevealed())
	assert.Equal(t, "a", *answerAt(t, c, 0).SelectedOption)

	assert.Equal(t, Summary{Answered: 1, Marked: 1, Unanswered: 0, NotVisited: 1}, c.ProgressSummary())
}

func TestSnapshot_HidesAnswerUntilRevealed(t *testing.T) {
	q := mcq(7, "b")
	q.ImageID = "  "
	c := newSession(t, q)

	snap := c.Snapshot()
	assert.Empty(t, snap.Current.Answer)
	assert.Nil(t, snap.Current.Explanation)
	assert.Empty(t, snap.Current.ImageID)
	require.Len(t, snap.Current.Options, 4)
	assert.Equal(t, "a", snap.Current.Options[0].Key)
	assert.Equal(t, "d", snap.Current.Options[3].Key)

	require.NoError(t, c.SelectOption("b"))
	snap = c.Snapshot()
	assert.Equal(t, "b", snap.Current.Answer)
	assert.NotEmpty(t, snap.Current.Explanation)
	assert.Equal(t, []Status{StatusAnswered}, snap.Statuses)
}

func TestSubscribe_SeesCompletedTransitions(t *testing.T) {
	c := newSession(t, mcq(1, "a"), mcq(2, "b"))

	var changes []Change
	unsubscribe := c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	require.NoError(t, c.SelectOption("a"))
	require.True(t, c.Next())
	assert.ErrorIs(t, c.GoTo(5), ErrIndexOutOfRange)

	require.Len(t, changes, 2)
	assert.Equal(t, ChangeSelect, changes[0].Kind)
	assert.Equal(t, StatusAnswered, changes[0].Snapshot.Statuses[0])
	assert.True(t, changes[0].Snapshot.Revealed)
	assert.Equal(t, ChangeNavigate, changes[1].Kind)
	assert.Equal(t, 1, changes[1].Snapshot.CurrentIndex)
	assert.Equal(t, StatusUnanswered, changes[1].Snapshot.Statuses[1])

	unsubscribe()
	require.True(t, c.Previous())
	assert.Len(t, changes, 2)
}
