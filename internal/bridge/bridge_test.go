package bridge

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubProvider struct {
	mu    sync.Mutex
	calls []string
	out   map[string][]string
	err   error
	block chan struct{}
}

func (p *stubProvider) Transliterate(ctx context.Context, text, language string) ([]string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, language+":"+text)
	p.mu.Unlock()
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.out[text], nil
}

func TestHandlerDispatch(t *testing.T) {
	p := &stubProvider{out: map[string][]string{"ki": {"ಕಿ", "ಕೀ"}}}
	h := &Handler{Provider: p}

	resp := h.Handle(context.Background(), Request{ID: 7, Action: ActionTransliterate, Text: "ki", Language: "kn"})
	if !resp.Success || resp.ID != 7 {
		t.Fatalf("resp = %+v, want success id 7", resp)
	}
	if len(resp.Suggestions) != 2 || resp.Suggestions[0] != "ಕಿ" {
		t.Fatalf("suggestions = %v, want [ಕಿ ಕೀ]", resp.Suggestions)
	}

	resp = h.Handle(context.Background(), Request{ID: 8, Action: ActionTransliterate, Text: "zz", Language: "kn"})
	if !resp.Success || resp.Suggestions == nil || len(resp.Suggestions) != 0 {
		t.Fatalf("resp = %+v, want success with empty list", resp)
	}

	resp = h.Handle(context.Background(), Request{ID: 9, Action: "reverse", Text: "ಕಿ"})
	if resp.Success || !strings.Contains(resp.Error, "reverse") {
		t.Fatalf("resp = %+v, want unknown action failure", resp)
	}
}

func TestHandlerProviderError(t *testing.T) {
	h := &Handler{Provider: &stubProvider{err: errors.New("upstream 500")}}
	resp := h.Handle(context.Background(), Request{ID: 1, Action: ActionTransliterate, Text: "ki", Language: "kn"})
	if resp.Success || resp.Error != "upstream 500" {
		t.Fatalf("resp = %+v, want upstream failure", resp)
	}

	resp = (&Handler{}).Handle(context.Background(), Request{Action: ActionTransliterate, Text: "ki"})
	if resp.Success {
		t.Fatalf("resp without provider = %+v, want failure", resp)
	}
}

func TestLocalRepliesOnce(t *testing.T) {
	l := NewLocal(&stubProvider{out: map[string][]string{"ki": {"ಕಿ"}}})
	replies := make(chan Response, 2)
	l.Send(context.Background(), Request{ID: 3, Action: ActionTransliterate, Text: "ki", Language: "kn"}, func(r Response) {
		replies <- r
	})
	l.Wait()
	if len(replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(replies))
	}
	if r := <-replies; !r.Success || r.Suggestions[0] != "ಕಿ" {
		t.Fatalf("reply = %+v, want ಕಿ", r)
	}
}

func TestLocalContextExpiry(t *testing.T) {
	p := &stubProvider{block: make(chan struct{})}
	defer close(p.block)
	l := NewLocal(p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	replies := make(chan Response, 2)
	l.Send(ctx, Request{ID: 4, Action: ActionTransliterate, Text: "ki", Language: "kn"}, func(r Response) {
		replies <- r
	})
	select {
	case r := <-replies:
		if r.Success {
			t.Fatalf("reply = %+v, want failure on expiry", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no reply after context expiry")
	}
	l.Wait()
	if len(replies) != 0 {
		t.Fatalf("extra replies = %d, want none", len(replies))
	}
}

func TestFailureMessage(t *testing.T) {
	if r := Failure(5, nil); r.Success || r.Error == "" || r.ID != 5 {
		t.Fatalf("Failure(nil) = %+v", r)
	}
}

func dialTestServer(t *testing.T, p Transliterator) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(&Server{Handler: &Handler{Provider: p}, RequestTimeout: time.Second})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		srv.Close()
		t.Fatalf("Dial error: %v", err)
	}
	return c, func() {
		_ = c.Close()
		srv.Close()
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	p := &stubProvider{out: map[string][]string{
		"ki":  {"ಕಿ", "ಕೀ"},
		"kin": {"ಕಿನ್"},
	}}
	c, done := dialTestServer(t, p)
	defer done()

	type got struct {
		text string
		resp Response
	}
	replies := make(chan got, 2)
	for _, text := range []string{"ki", "kin"} {
		text := text
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Send(ctx, Request{Action: ActionTransliterate, Text: text, Language: "kn"}, func(r Response) {
			replies <- got{text: text, resp: r}
		})
	}
	for i := 0; i < 2; i++ {
		select {
		case g := <-replies:
			if !g.resp.Success {
				t.Fatalf("reply for %q = %+v, want success", g.text, g.resp)
			}
			want := p.out[g.text]
			if len(g.resp.Suggestions) != len(want) || g.resp.Suggestions[0] != want[0] {
				t.Fatalf("reply for %q = %v, want %v", g.text, g.resp.Suggestions, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for reply %d", i)
		}
	}
}

func TestWebSocketClosedConnectionFails(t *testing.T) {
	p := &stubProvider{block: make(chan struct{})}
	defer close(p.block)
	c, done := dialTestServer(t, p)

	replies := make(chan Response, 1)
	c.Send(context.Background(), Request{Action: ActionTransliterate, Text: "ki", Language: "kn"}, func(r Response) {
		replies <- r
	})
	done()

	select {
	case r := <-replies:
		if r.Success {
			t.Fatalf("reply = %+v, want failure after close", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("pending request never failed")
	}

	after := make(chan Response, 1)
	c.Send(context.Background(), Request{Action: ActionTransliterate, Text: "ki"}, func(r Response) { after <- r })
	select {
	case r := <-after:
		if r.Success || r.Error != ErrClosed.Error() {
			t.Fatalf("send after close = %+v, want ErrClosed", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("send after close never replied")
	}
}
