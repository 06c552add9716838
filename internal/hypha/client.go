// Package hypha is a minimal websocket JSON-RPC client for a Hypha-style
// artifact server. It owns one connection, correlates responses to calls by
// id, and exposes a readiness flag that callers gate actions on.
package hypha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultCallTimeout = 20 * time.Second
	handshakeTimeout   = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	URL       string        // server base URL, http(s) or ws(s) scheme
	Workspace string
	Token     string // empty connects anonymously
	Timeout   time.Duration
	Logger    *zap.Logger
}

// UserInfo identifies the session user as reported by the server handshake.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// Client is a websocket JSON-RPC client. Zero value is not usable; construct
// with New and call Connect before Call.
type Client struct {
	opts Options
	log  *zap.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	ready     bool
	sessionID string
	user      UserInfo

	writeMu   sync.Mutex
	pendingMu sync.Mutex
	pending   map[string]chan callResult
	nextID    atomic.Uint64
}

// New builds a disconnected client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultCallTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		opts:    opts,
		log:     log.Named("hypha"),
		pending: make(map[string]chan callResult),
	}
}

type helloMessage struct {
	Type      string `json:"type"`
	ClientID  string `json:"client_id"`
	Workspace string `json:"workspace,omitempty"`
	Token     string `json:"token,omitempty"`
}

type welcomeMessage struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id,omitempty"`
	User      UserInfo `json:"user"`
	Message   string   `json:"message,omitempty"`
}

// Connect dials the server, performs the hello/welcome handshake and starts
// the read loop. An existing connection is replaced; its pending calls fail.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.RLock()
	opts := c.opts
	c.mu.RUnlock()

	wsURL, err := websocketURL(opts.URL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}

	hello := helloMessage{
		Type:      "hello",
		ClientID:  uuid.NewString(),
		Workspace: opts.Workspace,
		Token:     opts.Token,
	}
	if err := conn.WriteJSON(hello); err != nil {
		_ = conn.Close()
		return fmt.Errorf("send hello: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var wel welcomeMessage
	if err := conn.ReadJSON(&wel); err != nil {
		_ = conn.Close()
		return fmt.Errorf("read welcome: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(wel.Type)) != "welcome" {
		_ = conn.Close()
		if wel.Message != "" {
			return fmt.Errorf("handshake rejected: %s", wel.Message)
		}
		return fmt.Errorf("handshake rejected: unexpected frame %q", wel.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.failAllPending(ErrNotConnected)
	}
	c.conn = conn
	c.ready = true
	c.sessionID = wel.SessionID
	c.user = wel.User
	c.mu.Unlock()

	c.log.Info("connected",
		zap.String("url", wsURL),
		zap.String("session", wel.SessionID),
		zap.Bool("anonymous", wel.User.Anonymous))

	go c.readLoop(conn)
	return nil
}

// Close drops the connection. Pending calls fail with ErrNotConnected.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.ready = false
	c.user = UserInfo{}
	c.sessionID = ""
	c.mu.Unlock()

	c.failAllPending(ErrNotConnected)
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Ready reports whether the connection is up and the handshake completed.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// LoggedIn reports whether the session carries a non-anonymous identity.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready && !c.user.Anonymous && c.user.ID != ""
}

// User returns the handshake identity. Zero value when disconnected.
func (c *Client) User() UserInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// SessionID returns the server-assigned session identifier.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// SetToken replaces the credential used by the next Connect. It does not
// touch a live connection; callers reconnect to pick it up.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.opts.Token = token
	c.mu.Unlock()
}

// Call invokes method with params and decodes the result into out when out
// is non-nil. Each call gets its own timeout; a timeout abandons only this
// call, the connection stays up.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	method = strings.TrimSpace(method)
	if method == "" {
		return fmt.Errorf("method is required")
	}

	c.mu.RLock()
	conn := c.conn
	ready := c.ready
	c.mu.RUnlock()
	if conn == nil || !ready {
		return ErrNotConnected
	}

	id := fmt.Sprintf("%d", c.nextID.Add(1))
	ch := make(chan callResult, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
	if err := c.writeJSON(conn, req); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return fmt.Errorf("send %s: %w", method, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	select {
	case <-callCtx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return fmt.Errorf("%s: %w", method, callCtx.Err())
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if out == nil {
			return nil
		}
		if len(res.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.handleMessage(data)
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.ready = false
		c.user = UserInfo{}
		c.failAllPending(ErrNotConnected)
		c.log.Warn("connection lost")
	}
	c.mu.Unlock()
	_ = conn.Close()
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type callResult struct {
	Result json.RawMessage
	Err    error
}

func (c *Client) handleMessage(data []byte) {
	var resp rpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return
	}
	if strings.TrimSpace(resp.JSONRPC) != "2.0" {
		return
	}
	if resp.Method != "" {
		// server-initiated requests are not part of the consumed API
		return
	}

	id := rpcIDToString(resp.ID)
	if id == "" {
		return
	}

	var out callResult
	out.Result = resp.Result
	if resp.Error != nil {
		out.Err = &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}

	c.pendingMu.Lock()
	ch := c.pending[id]
	delete(c.pending, id)
	c.pendingMu.Unlock()
	if ch == nil {
		c.log.Debug("response for unknown call", zap.String("id", id))
		return
	}
	ch <- out
}

func (c *Client) failAllPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		delete(c.pending, id)
		if ch == nil {
			continue
		}
		ch <- callResult{Err: err}
	}
}

func (c *Client) writeJSON(conn *websocket.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteJSON(v)
}

func rpcIDToString(id any) string {
	switch v := id.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func websocketURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https", "":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}
