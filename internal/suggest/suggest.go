// Package suggest debounces keystrokes into transliteration requests and
// applies replies strictly in generation order.
//
// A Requester is not safe for concurrent use. Every method runs on the host
// event loop; timer fires and bridge replies are marshalled back onto it
// through Options.Post.
package suggest

import (
	"context"
	"errors"
	"time"

	"github.com/kobzarvs/qtranslit/internal/bridge"
	"github.com/kobzarvs/qtranslit/internal/logger"
	"github.com/kobzarvs/qtranslit/internal/observe"
	"github.com/kobzarvs/qtranslit/internal/wordtrack"
)

const (
	DefaultDelay   = 500 * time.Millisecond
	DefaultTimeout = 5 * time.Second
)

// Trigger names what caused a request to be sent.
type Trigger string

const (
	TriggerDebounce  Trigger = "debounce"
	TriggerDelimiter Trigger = "delimiter"
)

// ErrNoReply is used when the collaborator reports failure without a message.
var ErrNoReply = errors.New("suggest: request failed")

// Timer is the single pending debounce timer.
type Timer interface {
	Stop() bool
}

// Scheduler starts timers. Tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler runs timers on the runtime clock.
var RealScheduler Scheduler = realScheduler{}

// WordSource reports the word at the caret of the active surface.
type WordSource func() (wordtrack.Span, bool)

// Result is a reply bound to the generation it was requested under.
type Result struct {
	Generation  uint64
	Trigger     Trigger
	Span        wordtrack.Span
	Suggestions []string
	Err         error
}

// Failed reports whether the result should fall back to the typed word.
func (r Result) Failed() bool {
	return r.Err != nil || len(r.Suggestions) == 0
}

type Options struct {
	Delay     time.Duration
	Timeout   time.Duration
	Language  string
	Scheduler Scheduler
	// Post runs f on the event loop. Nil runs f in place.
	Post    func(f func())
	Metrics *observe.Metrics
}

// Requester owns the debounce slot and the generation counter.
type Requester struct {
	ch      bridge.Channel
	source  WordSource
	apply   func(Result)
	delay   time.Duration
	timeout time.Duration
	lang    string
	sched   Scheduler
	post    func(func())
	metrics *observe.Metrics

	gen   uint64
	timer Timer
}

// New builds a requester that asks ch for candidates of the word reported by
// source and hands current results to apply.
func New(ch bridge.Channel, source WordSource, apply func(Result), opts Options) *Requester {
	r := &Requester{
		ch:      ch,
		source:  source,
		apply:   apply,
		delay:   opts.Delay,
		timeout: opts.Timeout,
		lang:    opts.Language,
		sched:   opts.Scheduler,
		post:    opts.Post,
		metrics: opts.Metrics,
	}
	if r.delay <= 0 {
		r.delay = DefaultDelay
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.sched == nil {
		r.sched = RealScheduler
	}
	if r.post == nil {
		r.post = func(f func()) { f() }
	}
	return r
}

func (r *Requester) Generation() uint64 {
	return r.gen
}

func (r *Requester) Language() string {
	return r.lang
}

func (r *Requester) SetLanguage(lang string) {
	r.lang = lang
}

// Pending reports whether a debounce timer is armed.
func (r *Requester) Pending() bool {
	return r.timer != nil
}

// Input records a character edit: the pending timer is replaced and every
// outstanding reply becomes stale.
func (r *Requester) Input() {
	r.stopTimer()
	r.gen++
	gen := r.gen
	r.timer = r.sched.AfterFunc(r.delay, func() {
		r.post(func() { r.fire(gen) })
	})
}

// Finalize resolves the word at a delimiter without waiting for the timer.
// It reports whether a request was sent.
func (r *Requester) Finalize() bool {
	r.stopTimer()
	r.gen++
	span, ok := r.source()
	if !ok {
		return false
	}
	r.send(r.gen, span, TriggerDelimiter)
	return true
}

// Cancel drops the pending timer and invalidates in-flight replies.
func (r *Requester) Cancel() {
	r.stopTimer()
	r.gen++
}

// Deliver applies res if it belongs to the current generation. Stale
// results are discarded and reported as not applied.
func (r *Requester) Deliver(res Result) bool {
	if res.Generation != r.gen {
		r.metrics.RecordStale(context.Background())
		logger.Debug("suggest: discarding stale reply", "gen", res.Generation, "current", r.gen, "word", res.Span.Word)
		return false
	}
	if r.apply != nil {
		r.apply(res)
	}
	return true
}

func (r *Requester) fire(gen uint64) {
	if gen != r.gen {
		return
	}
	r.timer = nil
	span, ok := r.source()
	if !ok {
		return
	}
	r.send(gen, span, TriggerDebounce)
}

func (r *Requester) send(gen uint64, span wordtrack.Span, trigger Trigger) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	r.metrics.RecordRequest(ctx, string(trigger))
	logger.Debug("suggest: request", "word", span.Word, "language", r.lang, "gen", gen, "trigger", trigger)

	req := bridge.Request{
		ID:       gen,
		Action:   bridge.ActionTransliterate,
		Text:     span.Word,
		Language: r.lang,
	}
	r.ch.Send(ctx, req, func(resp bridge.Response) {
		cancel()
		res := Result{Generation: gen, Trigger: trigger, Span: span}
		if resp.Success {
			res.Suggestions = resp.Suggestions
		} else if resp.Error != "" {
			res.Err = errors.New(resp.Error)
		} else {
			res.Err = ErrNoReply
		}
		r.post(func() { r.Deliver(res) })
	})
}

func (r *Requester) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
