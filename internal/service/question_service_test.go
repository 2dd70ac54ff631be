package service

import (
	"context"
	"errors"
	"testing"

	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	payload []byte
	err     error
	calls   int
	onFetch func()
}

func (f *fakeSource) Fetch(ctx context.Context, section, topic string) ([]byte, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.payload, f.err
}

func (f *fakeSource) Describe(section, topic string) string {
	return "fake://" + section + "/" + topic
}

const threeQuestions = `[
	{"id":1,"question":"What is $1+1$?","options":{"a":"1","b":"2"},"answer":"b","topic":"Averages","section":"QA"},
	{"id":2,"question":"Pick one","options":{"a":"x","b":"y"},"answer":"a","topic":"Averages","section":"QA"},
	{"id":3,"question":"Free response","answer":"42","topic":"Averages","section":"QA"}
]`

func newQuestionService(src repository.QuestionSource) *QuestionService {
	return NewQuestionService(src, nil, 0, zerolog.Nop())
}

func TestQuestionService_Load(t *testing.T) {
	src := &fakeSource{payload: []byte(threeQuestions)}

	qs, err := newQuestionService(src).Load(context.Background(), " QA ", "Averages")
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, 1, qs[0].ID)
	assert.Equal(t, 3, qs[2].ID)
	assert.True(t, qs[0].HasOptions())
	assert.False(t, qs[2].HasOptions())
	assert.Equal(t, 1, src.calls)
}

func TestQuestionService_MissingParameterSkipsFetch(t *testing.T) {
	src := &fakeSource{payload: []byte(threeQuestions)}
	svc := newQuestionService(src)

	for _, tc := range []struct{ section, topic string }{
		{"", "Averages"},
		{"QA", ""},
		{"  ", "  "},
	} {
		_, err := svc.Load(context.Background(), tc.section, tc.topic)
		assert.ErrorIs(t, err, ErrMissingParameter)
	}
	assert.Zero(t, src.calls)
}

func TestQuestionService_EmptyResult(t *testing.T) {
	_, err := newQuestionService(&fakeSource{payload: []byte(`[]`)}).
		Load(context.Background(), "QA", "Averages")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestQuestionService_FetchErrors(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := newQuestionService(&fakeSource{err: boom}).Load(context.Background(), "QA", "Averages")

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "QA", fetchErr.Section)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := newQuestionService(&fakeSource{payload: []byte(`{"not":"an array"}`)}).
			Load(context.Background(), "QA", "Averages")

		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("invalid segment does no I/O", func(t *testing.T) {
		src := &fakeSource{payload: []byte(threeQuestions)}
		_, err := newQuestionService(src).Load(context.Background(), "QA", "../secrets")

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, repository.ErrInvalidSegment)
		assert.Zero(t, src.calls)
	})
}

func TestQuestionService_CancelledDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{payload: []byte(threeQuestions), onFetch: cancel}

	qs, err := newQuestionService(src).Load(ctx, "QA", "Averages")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, qs)
}

func TestQuestionService_InvalidateWithoutCache(t *testing.T) {
	assert.NoError(t, newQuestionService(&fakeSource{}).Invalidate(context.Background(), "QA", "Averages"))
}
