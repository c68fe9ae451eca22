package usecase

import (
	"time"

	"github.com/wwwizards/leadflow/internal/entity"
)

// SessionStore keeps at most one active session per user. WithUser runs
// fn while holding that user's lock; fn gets the current session (nil if
// none) and returns the session to keep, nil to clear it. Two concurrent
// events for the same user are therefore applied one at a time, while
// different users never block each other.
type SessionStore interface {
	WithUser(userID int64, fn func(s *entity.Session) *entity.Session)
}

// Completion carries everything a terminal transition produced. The
// session is already cleared when a Completion is returned; persisting
// and notifying are the caller's responsibility and best-effort.
type Completion struct {
	Flow    string
	Answers map[string]string
}

// SubmitResult is either the next prompt or a terminal completion.
type SubmitResult struct {
	Reply     entity.Reply
	Completed *Completion
}

// Engine is the conversation state machine. It owns the legal transitions
// of every registered flow and nothing else: no storage, no delivery.
type Engine struct {
	sessions SessionStore
	flows    map[string]Flow
	now      func() time.Time
}

func NewEngine(sessions SessionStore, flows ...Flow) *Engine {
	m := make(map[string]Flow, len(flows))
	for _, f := range flows {
		m[f.Name] = f
	}
	return &Engine{
		sessions: sessions,
		flows:    m,
		now:      time.Now,
	}
}

// Begin starts flowName for the user. An existing session is discarded
// first: starting always restarts, answers never leak across sessions.
func (e *Engine) Begin(userID int64, flowName string) (entity.Reply, error) {
	flow, ok := e.flows[flowName]
	if !ok {
		return entity.Reply{}, ErrUnknownFlow
	}

	var reply entity.Reply
	e.sessions.WithUser(userID, func(_ *entity.Session) *entity.Session {
		reply = flow.PromptFor(0)
		return &entity.Session{
			UserID:    userID,
			Flow:      flow.Name,
			StepIndex: 0,
			Answers:   make(map[string]string),
			StartedAt: e.now(),
		}
	})
	return reply, nil
}

// Submit validates input against the user's current step. A choice value
// outside the declared option set leaves the session untouched and
// returns a ValidationError alongside a re-prompt of the same step. On
// the last step the session is cleared and a Completion is returned; the
// terminal state is momentary and the caller dispatches side effects
// after the user lock has been released.
func (e *Engine) Submit(userID int64, input string) (SubmitResult, error) {
	var (
		result SubmitResult
		err    error
	)

	e.sessions.WithUser(userID, func(s *entity.Session) *entity.Session {
		if s == nil {
			err = ErrNoSession
			return nil
		}

		flow := e.flows[s.Flow]
		step := flow.Steps[s.StepIndex]

		if !step.Accepts(input) {
			err = ValidationError{Field: step.ID, Message: "invalid choice"}
			result.Reply = flow.PromptFor(s.StepIndex)
			return s
		}

		s.Answers[step.ID] = input
		s.StepIndex++

		if s.StepIndex < len(flow.Steps) {
			result.Reply = flow.PromptFor(s.StepIndex)
			return s
		}

		answers := make(map[string]string, len(s.Answers))
		for k, v := range s.Answers {
			answers[k] = v
		}
		result.Completed = &Completion{Flow: s.Flow, Answers: answers}
		return nil
	})

	return result, err
}

// Cancel discards the user's session, if any. Idempotent: cancelling with
// no active session is a no-op.
func (e *Engine) Cancel(userID int64) {
	e.sessions.WithUser(userID, func(_ *entity.Session) *entity.Session {
		return nil
	})
}

// Active reports whether the user currently has a session. Used by the
// dispatcher to route plain text.
func (e *Engine) Active(userID int64) bool {
	active := false
	e.sessions.WithUser(userID, func(s *entity.Session) *entity.Session {
		active = s != nil
		return s
	})
	return active
}
