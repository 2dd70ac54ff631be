package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/session"
	ws "github.com/catprepedge/catprep-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct{ ch chan time.Time }

func (m *manualTicker) Chan() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()                  {}

type wsMessage struct {
	Event                ws.Event         `json:"event"`
	Kind                 ws.ErrorKind     `json:"kind"`
	Error                string           `json:"error"`
	TimeRemainingSeconds int              `json:"time_remaining_seconds"`
	State                session.Snapshot `json:"state"`
	Result               session.Result   `json:"result"`
}

func startTestServer(t *testing.T, ticker *manualTicker) *httptest.Server {
	t.Helper()
	h := NewWSHandler(testQuestionService(), nil, nil, 60, zerolog.Nop(), nil,
		session.WithTicker(func() session.Ticker { return ticker }))

	r := gin.New()
	r.GET("/ws/v1/tests/stream", h.TestStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/tests/stream?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, req ws.RequestPayload) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
}

func TestTestStream_FullFlow(t *testing.T) {
	ticker := &manualTicker{ch: make(chan time.Time)}
	conn := dial(t, startTestServer(t, ticker), "section=QA&topic=Averages")

	msg := read(t, conn)
	require.Equal(t, ws.EventState, msg.Event)
	assert.Equal(t, 3, msg.State.Total)
	assert.Equal(t, 60, msg.State.TimeRemainingSeconds)
	assert.Equal(t, []session.Status{session.StatusUnanswered, session.StatusNotVisited, session.StatusNotVisited}, msg.State.Statuses)
	assert.Empty(t, msg.State.Current.Answer)

	ticker.ch <- time.Now()
	msg = read(t, conn)
	require.Equal(t, ws.EventTick, msg.Event)
	assert.Equal(t, 59, msg.TimeRemainingSeconds)

	send(t, conn, ws.RequestPayload{Action: ws.ActionSelect, Option: "b"})
	msg = read(t, conn)
	require.Equal(t, ws.EventState, msg.Event)
	assert.True(t, msg.State.Revealed)
	assert.Equal(t, "b", msg.State.Current.Answer)
	assert.Equal(t, session.StatusAnswered, msg.State.Statuses[0])

	// Re-selecting a revealed question only re-sends the state.
	send(t, conn, ws.RequestPayload{Action: ws.ActionSelect, Option: "a"})
	msg = read(t, conn)
	require.Equal(t, ws.EventState, msg.Event)
	require.NotNil(t, msg.State.Current.SelectedOption)
	assert.Equal(t, "b", *msg.State.Current.SelectedOption)

	send(t, conn, ws.RequestPayload{Action: ws.ActionNext})
	msg = read(t, conn)
	assert.Equal(t, 1, msg.State.CurrentIndex)
	assert.False(t, msg.State.Revealed)

	send(t, conn, ws.RequestPayload{Action: ws.ActionMark})
	msg = read(t, conn)
	assert.Equal(t, session.StatusMarked, msg.State.Statuses[1])
	assert.Equal(t, 1, msg.State.Summary.Marked)

	send(t, conn, ws.RequestPayload{Action: ws.ActionReveal})
	msg = read(t, conn)
	require.Equal(t, ws.EventError, msg.Event)
	assert.Equal(t, ws.ErrorKindRejected, msg.Kind)

	idx := 2
	send(t, conn, ws.RequestPayload{Action: ws.ActionGoTo, Index: &idx})
	msg = read(t, conn)
	assert.Equal(t, 2, msg.State.CurrentIndex)

	send(t, conn, ws.RequestPayload{Action: ws.ActionReveal})
	msg = read(t, conn)
	assert.True(t, msg.State.Revealed)
	assert.Equal(t, "15", msg.State.Current.Answer)

	send(t, conn, ws.RequestPayload{Action: ws.ActionPing})
	assert.Equal(t, ws.EventPong, read(t, conn).Event)

	send(t, conn, ws.RequestPayload{Action: ws.ActionSubmit})
	msg = read(t, conn)
	require.Equal(t, ws.EventResult, msg.Event)
	assert.Equal(t, session.Result{Total: 3, Attempted: 1, Correct: 1, Unattempted: 2}, msg.Result)
	assert.True(t, msg.State.Finished)

	send(t, conn, ws.RequestPayload{Action: ws.ActionSubmit})
	msg = read(t, conn)
	require.Equal(t, ws.EventError, msg.Event)
	assert.Equal(t, ws.ErrorKindRejected, msg.Kind)
}

func TestTestStream_Expiry(t *testing.T) {
	ticker := &manualTicker{ch: make(chan time.Time)}
	h := NewWSHandler(testQuestionService(), nil, nil, 1, zerolog.Nop(), nil,
		session.WithTicker(func() session.Ticker { return ticker }))
	r := gin.New()
	r.GET("/ws/v1/tests/stream", h.TestStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv, "section=QA&topic=Averages")
	read(t, conn)

	ticker.ch <- time.Now()
	msg := read(t, conn)
	require.Equal(t, ws.EventExpired, msg.Event)
	assert.True(t, msg.State.Expired)
	assert.Zero(t, msg.State.TimeRemainingSeconds)

	send(t, conn, ws.RequestPayload{Action: ws.ActionSelect, Option: "b"})
	msg = read(t, conn)
	require.Equal(t, ws.EventError, msg.Event)

	// Review stays possible.
	send(t, conn, ws.RequestPayload{Action: ws.ActionNext})
	msg = read(t, conn)
	require.Equal(t, ws.EventState, msg.Event)
	assert.Equal(t, 1, msg.State.CurrentIndex)
}

func TestTestStream_LoadErrors(t *testing.T) {
	srv := startTestServer(t, &manualTicker{ch: make(chan time.Time)})

	for _, tc := range []struct {
		query string
		kind  ws.ErrorKind
	}{
		{"section=QA", ws.ErrorKindMissingParameter},
		{"section=QA&topic=Empty", ws.ErrorKindEmpty},
		{"section=QA&topic=Unknown", ws.ErrorKindFetch},
	} {
		conn := dial(t, srv, tc.query)
		msg := read(t, conn)
		assert.Equal(t, ws.EventError, msg.Event, tc.query)
		assert.Equal(t, tc.kind, msg.Kind, tc.query)
	}
}

func TestTestStream_UnknownAction(t *testing.T) {
	conn := dial(t, startTestServer(t, &manualTicker{ch: make(chan time.Time)}), "section=QA&topic=Averages")
	read(t, conn)

	send(t, conn, ws.RequestPayload{Action: "teleport"})
	msg := read(t, conn)
	assert.Equal(t, ws.EventError, msg.Event)
	assert.Equal(t, ws.ErrorKindInvalidAction, msg.Kind)
}

// blockingSource holds every fetch until its context ends or release is closed.
type blockingSource struct {
	started   chan struct{}
	cancelled chan struct{}
	release   chan struct{}
}

func (b *blockingSource) Fetch(ctx context.Context, section, topic string) ([]byte, error) {
	close(b.started)
	select {
	case <-ctx.Done():
		close(b.cancelled)
		return nil, ctx.Err()
	case <-b.release:
		return []byte(averagesJSON), nil
	}
}

func (b *blockingSource) Describe(section, topic string) string {
	return "blocking://" + section + "/" + topic
}

func TestTestStream_DisconnectCancelsFetch(t *testing.T) {
	src := &blockingSource{
		started:   make(chan struct{}),
		cancelled: make(chan struct{}),
		release:   make(chan struct{}),
	}
	defer close(src.release)

	qs := service.NewQuestionService(src, nil, 0, zerolog.Nop())
	h := NewWSHandler(qs, nil, nil, 60, zerolog.Nop(), nil)
	r := gin.New()
	r.GET("/ws/v1/tests/stream", h.TestStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/tests/stream?section=QA&topic=Averages"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	select {
	case <-src.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
	}

	require.NoError(t, conn.Close())

	select {
	case <-src.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch context was not cancelled after the client disconnected")
	}
}

func TestTestStream_CommandsDuringLoadAreQueued(t *testing.T) {
	src := &blockingSource{
		started:   make(chan struct{}),
		cancelled: make(chan struct{}),
		release:   make(chan struct{}),
	}

	qs := service.NewQuestionService(src, nil, 0, zerolog.Nop())
	ticker := &manualTicker{ch: make(chan time.Time)}
	h := NewWSHandler(qs, nil, nil, 60, zerolog.Nop(), nil,
		session.WithTicker(func() session.Ticker { return ticker }))
	r := gin.New()
	r.GET("/ws/v1/tests/stream", h.TestStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv, "section=QA&topic=Averages")
	<-src.started
	send(t, conn, ws.RequestPayload{Action: ws.ActionNext})
	close(src.release)

	msg := read(t, conn)
	require.Equal(t, ws.EventState, msg.Event)
	assert.Equal(t, 0, msg.State.CurrentIndex)

	msg = read(t, conn)
	require.Equal(t, ws.EventState, msg.Event)
	assert.Equal(t, 1, msg.State.CurrentIndex)
}
