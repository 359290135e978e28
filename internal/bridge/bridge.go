// Package bridge carries transliteration requests from the input surfaces to
// the collaborator that is allowed to reach the network.
//
// The contract is fire-and-callback: every [Channel.Send] receives exactly one
// reply, whether the collaborator answers, fails, or the context expires. A
// transport failure is reported as a Response with Success set to false so
// callers handle it exactly like a provider failure.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/kobzarvs/qtranslit/internal/logger"
)

// ActionTransliterate is the only action the collaborator serves.
const ActionTransliterate = "transliterate"

// Request is the message sent to the collaborator.
type Request struct {
	ID       uint64 `json:"id,omitempty"`
	Action   string `json:"action"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Response is the collaborator's reply to a single Request.
type Response struct {
	ID          uint64   `json:"id,omitempty"`
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
	Error       string   `json:"error,omitempty"`
}

// Failure builds an unsuccessful response for id.
func Failure(id uint64, err error) Response {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Response{ID: id, Success: false, Error: msg}
}

// Channel delivers a request and calls reply exactly once.
type Channel interface {
	Send(ctx context.Context, req Request, reply func(Response))
}

// Transliterator converts Latin text into candidates in the target script.
type Transliterator interface {
	Transliterate(ctx context.Context, text, language string) ([]string, error)
}

// Handler is the collaborator side: it dispatches a request to the provider.
type Handler struct {
	Provider Transliterator
}

func (h *Handler) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionTransliterate:
	default:
		return Failure(req.ID, fmt.Errorf("unknown action %q", req.Action))
	}
	if h.Provider == nil {
		return Failure(req.ID, fmt.Errorf("no provider configured"))
	}
	candidates, err := h.Provider.Transliterate(ctx, req.Text, req.Language)
	if err != nil {
		logger.Debug("transliterate failed", "text", req.Text, "language", req.Language, "err", err)
		return Failure(req.ID, err)
	}
	if candidates == nil {
		candidates = []string{}
	}
	return Response{ID: req.ID, Success: true, Suggestions: candidates}
}

// Local runs the collaborator in-process, one goroutine per request.
type Local struct {
	handler *Handler
	wg      sync.WaitGroup
}

func NewLocal(p Transliterator) *Local {
	return &Local{handler: &Handler{Provider: p}}
}

func (l *Local) Send(ctx context.Context, req Request, reply func(Response)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		done := make(chan Response, 1)
		go func() { done <- l.handler.Handle(ctx, req) }()
		select {
		case resp := <-done:
			reply(resp)
		case <-ctx.Done():
			reply(Failure(req.ID, ctx.Err()))
		}
	}()
}

// Wait blocks until every in-flight request has replied.
func (l *Local) Wait() {
	l.wg.Wait()
}
