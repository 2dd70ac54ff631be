package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/session"
	ws "github.com/catprepedge/catprep-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

const (
	outboxSize = 32
	inboxSize  = 16
)

// WSHandler streams one practice test per WebSocket connection.
type WSHandler struct {
	questionService *service.QuestionService
	progressService *service.ProgressService
	tracker         *service.SessionTracker
	duration        int
	log             zerolog.Logger
	upgrader        websocket.Upgrader
	runnerOpts      []session.RunnerOption
}

// NewWSHandler creates a new WSHandler. durationSeconds is the countdown of every test.
func NewWSHandler(
	questionService *service.QuestionService,
	progressService *service.ProgressService,
	tracker *service.SessionTracker,
	durationSeconds int,
	log zerolog.Logger,
	allowedOrigins []string,
	runnerOpts ...session.RunnerOption,
) *WSHandler {
	return &WSHandler{
		questionService: questionService,
		progressService: progressService,
		tracker:         tracker,
		duration:        durationSeconds,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
		runnerOpts:      runnerOpts,
	}
}

// TestStream godoc
// WS /ws/v1/tests/stream?section=QA&topic=Averages
// Loads the topic's questions and drives a timed practice test over the socket.
func (h *WSHandler) TestStream(c *gin.Context) {
	section := c.Query("section")
	topic := c.Query("topic")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	wsLog := h.log.With().
		Str("section", section).
		Str("topic", topic).
		Logger()

	var userID string
	if claims := middleware.GetClaims(c); claims != nil {
		userID = claims.UserID
		wsLog = wsLog.With().Str("user_id", userID).Logger()
	}

	// The reader runs from the start so a client leaving mid-fetch cancels the load.
	inbox := readCommands(ctx, cancel, conn, wsLog)

	questions, err := h.questionService.Load(ctx, section, topic)
	if ctx.Err() != nil {
		wsLog.Info().Msg("Client left before questions loaded")
		return
	}
	if err != nil {
		kind, msg := loadErrorKind(err)
		wsLog.Warn().Err(err).Msg("Question load failed")
		ws.WriteError(conn, kind, msg)
		ws.CloseNormal(conn, msg)
		return
	}

	ctrl, err := session.New(questions, h.duration)
	if err != nil {
		wsLog.Error().Err(err).Msg("Session start failed")
		ws.WriteError(conn, ws.ErrorKindInternal, "could not start test")
		return
	}

	out := make(chan interface{}, outboxSize)
	send := func(v interface{}) {
		select {
		case out <- v:
		case <-ctx.Done():
		}
	}

	ctrl.Subscribe(func(ch session.Change) {
		switch ch.Kind {
		case session.ChangeTick:
			send(ws.TickResponse{Event: ws.EventTick, TimeRemainingSeconds: ch.Snapshot.TimeRemainingSeconds})
		case session.ChangeExpired:
			send(ws.StateResponse{Event: ws.EventExpired, State: ch.Snapshot})
		case session.ChangeSubmit:
			// The submit command sends the result itself.
		default:
			send(ws.StateResponse{Event: ws.EventState, State: ch.Snapshot})
		}
	})

	// Initial state goes out before the clock starts.
	send(ws.StateResponse{Event: ws.EventState, State: ctrl.Snapshot()})

	h.track(true, wsLog)
	defer h.track(false, wsLog)

	runner := session.NewRunner(ctrl, h.runnerOpts...)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		runner.Run(ctx)
	}()

	sess := &testConn{
		h:       h,
		runner:  runner,
		send:    send,
		userID:  userID,
		section: section,
		topic:   topic,
		log:     wsLog,
	}
	go func() {
		defer cancel()
		sess.commandLoop(ctx, inbox)
	}()

	wsLog.Info().Int("questions", len(questions)).Msg("Test started")

	for {
		select {
		case <-ctx.Done():
			conn.Close()
			<-runDone
			wsLog.Info().Msg("Test connection closed")
			return
		case v := <-out:
			if err := ws.WriteTyped(conn, v); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				cancel()
			}
		}
	}
}

func (h *WSHandler) track(started bool, log zerolog.Logger) {
	if h.tracker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if started {
		err = h.tracker.Started(ctx)
	} else {
		err = h.tracker.Ended(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Session tracking failed")
	}
}

func loadErrorKind(err error) (ws.ErrorKind, string) {
	var fetchErr *service.FetchError
	switch {
	case errors.Is(err, service.ErrMissingParameter):
		return ws.ErrorKindMissingParameter, err.Error()
	case errors.Is(err, service.ErrEmptyResult):
		return ws.ErrorKindEmpty, err.Error()
	case errors.As(err, &fetchErr):
		return ws.ErrorKindFetch, "failed to fetch questions"
	default:
		return ws.ErrorKindInternal, "failed to load questions"
	}
}

// testConn is the per-connection command side of a test.
type testConn struct {
	h       *WSHandler
	runner  *session.Runner
	send    func(v interface{})
	userID  string
	section string
	topic   string
	log     zerolog.Logger
}

// readCommands decodes client frames onto the returned channel until the
// connection fails, then cancels ctx and closes the channel.
func readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, log zerolog.Logger) <-chan ws.RequestPayload {
	inbox := make(chan ws.RequestPayload, inboxSize)
	go func() {
		defer close(inbox)
		defer cancel()
		for {
			var msg ws.RequestPayload
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Msg("Unexpected close")
				} else {
					log.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case inbox <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return inbox
}

func (t *testConn) commandLoop(ctx context.Context, inbox <-chan ws.RequestPayload) {
	for msg := range inbox {
		if err := t.dispatch(ctx, &msg); err != nil {
			if errors.Is(err, session.ErrRunnerStopped) || ctx.Err() != nil {
				return
			}
			t.send(ws.ErrorResponse{Event: ws.EventError, Kind: ws.ErrorKindRejected, Error: err.Error()})
		}
	}
}

// exec runs fn on the runner goroutine and waits for its result.
func (t *testConn) exec(ctx context.Context, fn func(c *session.Controller) error) error {
	errc := make(chan error, 1)
	if err := t.runner.Do(ctx, func(c *session.Controller) { errc <- fn(c) }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *testConn) dispatch(ctx context.Context, msg *ws.RequestPayload) error {
	switch msg.Action {
	case ws.ActionSelect:
		return t.selectOption(ctx, msg.Option)

	case ws.ActionReveal:
		return t.exec(ctx, func(c *session.Controller) error { return c.RevealAnswer() })

	case ws.ActionMark:
		return t.exec(ctx, func(c *session.Controller) error { return c.ToggleMark() })

	case ws.ActionGoTo:
		if msg.Index == nil {
			t.send(ws.ErrorResponse{Event: ws.EventError, Kind: ws.ErrorKindInvalidAction, Error: "index is required"})
			return nil
		}
		return t.exec(ctx, func(c *session.Controller) error { return c.GoTo(*msg.Index) })

	case ws.ActionNext:
		return t.exec(ctx, func(c *session.Controller) error {
			if !c.Next() {
				t.send(ws.StateResponse{Event: ws.EventState, State: c.Snapshot()})
			}
			return nil
		})

	case ws.ActionPrevious:
		return t.exec(ctx, func(c *session.Controller) error {
			if !c.Previous() {
				t.send(ws.StateResponse{Event: ws.EventState, State: c.Snapshot()})
			}
			return nil
		})

	case ws.ActionState:
		return t.exec(ctx, func(c *session.Controller) error {
			t.send(ws.StateResponse{Event: ws.EventState, State: c.Snapshot()})
			return nil
		})

	case ws.ActionSubmit:
		return t.exec(ctx, func(c *session.Controller) error {
			res, err := c.Submit()
			if err != nil {
				return err
			}
			t.log.Info().
				Int("correct", res.Correct).
				Int("attempted", res.Attempted).
				Int("total", res.Total).
				Msg("Test submitted")
			t.send(ws.ResultResponse{Event: ws.EventResult, Result: res, State: c.Snapshot()})
			return nil
		})

	case ws.ActionPing:
		t.send(ws.PongResponse{Event: ws.EventPong})
		return nil

	default:
		t.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		t.send(ws.ErrorResponse{Event: ws.EventError, Kind: ws.ErrorKindInvalidAction, Error: "unknown action: " + string(msg.Action)})
		return nil
	}
}

// selectOption answers the current question. Re-selecting a revealed question
// leaves it unchanged and re-sends the state.
func (t *testConn) selectOption(ctx context.Context, option string) error {
	var correct bool
	err := t.exec(ctx, func(c *session.Controller) error {
		err := c.SelectOption(option)
		if errors.Is(err, session.ErrAlreadyRevealed) {
			t.send(ws.StateResponse{Event: ws.EventState, State: c.Snapshot()})
			return errAlreadyHandled
		}
		if err == nil {
			correct = c.Current().Answer == option
		}
		return err
	})
	if errors.Is(err, errAlreadyHandled) {
		return nil
	}
	if err != nil {
		return err
	}

	if t.userID != "" && t.h.progressService != nil {
		ev := model.ProgressEvent{
			UserID:    t.userID,
			Section:   t.section,
			Topic:     t.topic,
			IsCorrect: correct,
		}
		enqueueCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.h.progressService.Enqueue(enqueueCtx, ev); err != nil {
			t.log.Error().Err(err).Msg("Progress enqueue failed")
		}
	}
	return nil
}

var errAlreadyHandled = errors.New("already handled")
