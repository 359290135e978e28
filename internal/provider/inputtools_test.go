package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if got := r.URL.Query().Get("itc"); got != "kn-t-i0-und" {
			t.Errorf("itc = %q, want %q", got, "kn-t-i0-und")
		}
		if got := r.URL.Query().Get("num"); got != "5" {
			t.Errorf("num = %q, want %q", got, "5")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransliterateSuccess(t *testing.T) {
	srv := newServer(t, http.StatusOK, `["SUCCESS",[["ki",["ಕಿ","ಕೀ"],[],{}]]]`, nil)
	p := NewInputTools(srv.URL)
	got, err := p.Transliterate(context.Background(), "ki", "kn")
	if err != nil {
		t.Fatalf("Transliterate error: %v", err)
	}
	if len(got) != 2 || got[0] != "ಕಿ" || got[1] != "ಕೀ" {
		t.Fatalf("candidates = %q, want [ಕಿ ಕೀ]", got)
	}
}

func TestTransliterateNormalizesCandidates(t *testing.T) {
	srv := newServer(t, http.StatusOK, `["SUCCESS",[["kii",["\u0c95\u0cbf\u0cd5"],[],{}]]]`, nil)
	p := NewInputTools(srv.URL)
	got, err := p.Transliterate(context.Background(), "kii", "kn")
	if err != nil {
		t.Fatalf("Transliterate error: %v", err)
	}
	if len(got) != 1 || got[0] != "\u0c95\u0cc0" {
		t.Fatalf("candidates = %q, want NFC form", got)
	}
}

func TestTransliterateNoCandidates(t *testing.T) {
	srv := newServer(t, http.StatusOK, `["SUCCESS",[]]`, nil)
	p := NewInputTools(srv.URL)
	got, err := p.Transliterate(context.Background(), "xyz", "kn")
	if err != nil {
		t.Fatalf("Transliterate error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("candidates = %q, want empty", got)
	}
}

func TestTransliterateFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusInternalServerError, `oops`},
		{"not json", http.StatusOK, `<html>`},
		{"failed status", http.StatusOK, `["FAILED_TO_PROCESS",[]]`},
		{"short reply", http.StatusOK, `["SUCCESS"]`},
		{"bad candidates", http.StatusOK, `["SUCCESS",[["ki",7]]]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.status, tc.body, nil)
			p := NewInputTools(srv.URL)
			if _, err := p.Transliterate(context.Background(), "ki", "kn"); err == nil {
				t.Fatalf("Transliterate error = nil, want failure")
			}
		})
	}
}

func TestTransliterateEmptyTextSkipsNetwork(t *testing.T) {
	var hits int32
	srv := newServer(t, http.StatusOK, `["SUCCESS",[]]`, &hits)
	p := NewInputTools(srv.URL)
	got, err := p.Transliterate(context.Background(), "  ", "kn")
	if err != nil || len(got) != 0 {
		t.Fatalf("Transliterate = %q, %v", got, err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("hits = %d, want 0", hits)
	}
}

func TestBreakerShortCircuits(t *testing.T) {
	var hits int32
	srv := newServer(t, http.StatusBadGateway, ``, &hits)
	cb := NewCircuitBreaker(2, time.Minute)
	p := NewInputTools(srv.URL, WithBreaker(cb))
	for i := 0; i < 2; i++ {
		if _, err := p.Transliterate(context.Background(), "ki", "kn"); err == nil {
			t.Fatalf("call %d: error = nil", i)
		}
	}
	_, err := p.Transliterate(context.Background(), "ki", "kn")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("hits = %d, want 2", got)
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Second)
	now := time.Unix(100, 0)
	cb.now = func() time.Time { return now }
	failing := errors.New("down")
	if err := cb.Execute(func() error { return failing }); err != failing {
		t.Fatalf("error = %v, want %v", err, failing)
	}
	if cb.State() != "open" {
		t.Fatalf("state = %q, want open", cb.State())
	}
	now = now.Add(2 * time.Second)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("trial error = %v", err)
	}
	if cb.State() != "closed" {
		t.Fatalf("state = %q, want closed", cb.State())
	}
}
