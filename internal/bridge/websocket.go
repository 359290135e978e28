package bridge

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/kobzarvs/qtranslit/internal/logger"
)

// ErrClosed is reported to callers whose request was pending when the
// connection went away.
var ErrClosed = errors.New("bridge: connection closed")

// Server exposes a Handler over WebSocket, one JSON message per request.
type Server struct {
	Handler *Handler
	// RequestTimeout bounds each provider call. Zero means 10s.
	RequestTimeout time.Duration
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("bridge: accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var writeMu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		var req Request
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				logger.Debug("bridge: read ended", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			reqCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			resp := s.Handler.Handle(reqCtx, req)
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := wsjson.Write(ctx, conn, resp); err != nil {
				logger.Debug("bridge: write failed", "id", req.ID, "err", err)
			}
		}(req)
	}
}

// Client is a Channel backed by a WebSocket connection to a Server.
type Client struct {
	conn *websocket.Conn

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]func(Response)
	closed  bool
	done    chan struct{}
}

// Dial connects to a bridge server at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:    conn,
		pending: make(map[uint64]func(Response)),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Send(ctx context.Context, req Request, reply func(Response)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		reply(Failure(req.ID, ErrClosed))
		return
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = reply
	c.mu.Unlock()

	wire := req
	wire.ID = id
	go func() {
		if err := wsjson.Write(ctx, c.conn, wire); err != nil {
			c.resolve(id, Failure(id, err))
			return
		}
		select {
		case <-ctx.Done():
			c.resolve(id, Failure(id, ctx.Err()))
		case <-c.done:
		}
	}()
}

// resolve hands resp to the waiting caller once; later calls for id are no-ops.
func (c *Client) resolve(id uint64, resp Response) {
	c.mu.Lock()
	reply, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if ok {
		reply(resp)
	}
}

func (c *Client) readLoop() {
	defer c.failAll()
	for {
		var resp Response
		if err := wsjson.Read(context.Background(), c.conn, &resp); err != nil {
			logger.Debug("bridge client: read ended", "err", err)
			return
		}
		c.resolve(resp.ID, resp)
	}
}

func (c *Client) failAll() {
	c.mu.Lock()
	c.closed = true
	pending := c.pending
	c.pending = make(map[uint64]func(Response))
	close(c.done)
	c.mu.Unlock()
	for id, reply := range pending {
		reply(Failure(id, ErrClosed))
	}
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "client closed")
}
