// Package provider talks to the remote phonetic-to-script conversion service.
//
// The service is the Google Input Tools endpoint. A request names the input
// tool as "<language>-t-i0-und" and the reply is a loosely typed JSON array:
//
//	["SUCCESS", [["kannada", ["ಕನ್ನಡ", "ಕಾನ್ನಡ"], [], {}]]]
//
// An empty second element means the service understood the request but had
// no candidates. Anything else is treated as a malformed reply.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/kobzarvs/qtranslit/internal/observe"
)

// DefaultEndpoint is the public Input Tools request URL.
const DefaultEndpoint = "https://inputtools.google.com/request"

// ErrMalformed is returned when the reply does not have the expected shape.
var ErrMalformed = errors.New("provider: malformed response")

// InputTools is an HTTP client for the Input Tools transliteration API.
// It is safe for concurrent use.
type InputTools struct {
	endpoint   string
	num        int
	httpClient *http.Client
	breaker    *CircuitBreaker
	metrics    *observe.Metrics
}

type options struct {
	timeout time.Duration
	num     int
	breaker *CircuitBreaker
	metrics *observe.Metrics
	client  *http.Client
}

// Option configures an InputTools client.
type Option func(*options)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCandidates sets how many candidates to ask for. Default 5.
func WithCandidates(n int) Option {
	return func(o *options) { o.num = n }
}

// WithBreaker guards calls with cb.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(o *options) { o.breaker = cb }
}

// WithMetrics records request counts and latency on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func NewInputTools(endpoint string, opts ...Option) *InputTools {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	o := &options{num: 5}
	for _, opt := range opts {
		opt(o)
	}
	if o.num <= 0 {
		o.num = 5
	}
	client := o.client
	if client == nil {
		client = &http.Client{}
		if o.timeout > 0 {
			client.Timeout = o.timeout
		}
	}
	return &InputTools{
		endpoint:   endpoint,
		num:        o.num,
		httpClient: client,
		breaker:    o.breaker,
		metrics:    o.metrics,
	}
}

// Transliterate returns provider-ranked candidates for text. An empty text
// yields no candidates without a network call.
func (p *InputTools) Transliterate(ctx context.Context, text, language string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if language == "" {
		return nil, fmt.Errorf("provider: language must not be empty")
	}
	var out []string
	call := func() error {
		var err error
		out, err = p.fetch(ctx, text, language)
		return err
	}
	start := time.Now()
	var err error
	if p.breaker != nil {
		err = p.breaker.Execute(call)
	} else {
		err = call()
	}
	p.metrics.RecordProvider(ctx, language, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("provider: transliterate %q: %w", text, err)
	}
	return out, nil
}

func (p *InputTools) fetch(ctx context.Context, text, language string) ([]string, error) {
	q := url.Values{}
	q.Set("text", text)
	q.Set("itc", language+"-t-i0-und")
	q.Set("num", strconv.Itoa(p.num))
	q.Set("cp", "0")
	q.Set("cs", "1")
	q.Set("ie", "utf-8")
	q.Set("oe", "utf-8")
	q.Set("app", "demopage")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return parseReply(raw)
}

func parseReply(raw []json.RawMessage) ([]string, error) {
	if len(raw) < 2 {
		return nil, ErrMalformed
	}
	var status string
	if err := json.Unmarshal(raw[0], &status); err != nil {
		return nil, fmt.Errorf("%w: status: %v", ErrMalformed, err)
	}
	if status != "SUCCESS" {
		return nil, fmt.Errorf("provider status %q", status)
	}
	var results [][]json.RawMessage
	if err := json.Unmarshal(raw[1], &results); err != nil {
		return nil, fmt.Errorf("%w: results: %v", ErrMalformed, err)
	}
	if len(results) == 0 {
		return []string{}, nil
	}
	if len(results[0]) < 2 {
		return nil, ErrMalformed
	}
	var candidates []string
	if err := json.Unmarshal(results[0][1], &candidates); err != nil {
		return nil, fmt.Errorf("%w: candidates: %v", ErrMalformed, err)
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		out = append(out, norm.NFC.String(c))
	}
	return out, nil
}
