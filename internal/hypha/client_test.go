package hypha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startFakeServer runs a websocket endpoint that accepts the hello/welcome
// handshake as user and then answers each rpc request via answer. A nil
// response closes the connection instead of replying.
func startFakeServer(t *testing.T, user UserInfo, answer func(req rpcRequest) *rpcResponse) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var hello helloMessage
		if err := conn.ReadJSON(&hello); err != nil {
			return
		}
		if hello.Type != "hello" {
			_ = conn.WriteJSON(welcomeMessage{Type: "error", Message: "expected hello"})
			return
		}
		_ = conn.WriteJSON(welcomeMessage{Type: "welcome", SessionID: "sess-1", User: user})

		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := answer(req)
			if resp == nil {
				return
			}
			_ = conn.WriteJSON(resp)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCallRequiresConnection(t *testing.T) {
	c := New(Options{URL: "http://127.0.0.1:1"})
	err := c.Call(context.Background(), "artifact_manager.read", nil, nil)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected not-connected error, got %v", err)
	}
}

func TestConnectHandshakeAndCall(t *testing.T) {
	user := UserInfo{ID: "u-1", Email: "reviewer@example.org"}
	url := startFakeServer(t, user, func(req rpcRequest) *rpcResponse {
		if req.Method != "artifact_manager.read" {
			return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}}
		}
		return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"id":"zoo/unet","alias":"unet"}`)}
	})

	c := New(Options{URL: url, Workspace: "bioimage-io", Timeout: 2 * time.Second})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if !c.Ready() {
		t.Fatal("expected Ready after handshake")
	}
	if !c.LoggedIn() {
		t.Fatal("expected LoggedIn for non-anonymous user")
	}
	if got := c.User(); got.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got := c.SessionID(); got != "sess-1" {
		t.Fatalf("unexpected session id: %q", got)
	}

	var out struct {
		ID    string `json:"id"`
		Alias string `json:"alias"`
	}
	if err := c.Call(context.Background(), "artifact_manager.read", map[string]any{"artifact_id": "zoo/unet"}, &out); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if out.ID != "zoo/unet" || out.Alias != "unet" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestCallSurfacesTypedRPCError(t *testing.T) {
	url := startFakeServer(t, UserInfo{ID: "u-1"}, func(req rpcRequest) *rpcResponse {
		return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: 403, Message: "permission denied"}}
	})

	c := New(Options{URL: url, Timeout: 2 * time.Second})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	err := c.Call(context.Background(), "artifact_manager.approve", map[string]any{"artifact_id": "zoo/unet"}, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != 403 || rpcErr.Message != "permission denied" {
		t.Fatalf("unexpected rpc error: %+v", rpcErr)
	}
}

func TestAnonymousSessionIsNotLoggedIn(t *testing.T) {
	url := startFakeServer(t, UserInfo{ID: "anon", Anonymous: true}, func(req rpcRequest) *rpcResponse {
		return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{}`)}
	})

	c := New(Options{URL: url, Timeout: 2 * time.Second})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if !c.Ready() {
		t.Fatal("expected Ready for anonymous session")
	}
	if c.LoggedIn() {
		t.Fatal("anonymous session must not count as logged in")
	}
}

func TestHandshakeRejection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var hello helloMessage
		_ = conn.ReadJSON(&hello)
		_ = conn.WriteJSON(welcomeMessage{Type: "error", Message: "invalid token"})
	}))
	t.Cleanup(srv.Close)

	c := New(Options{URL: srv.URL, Token: "bad"})
	err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("expected handshake rejection")
	}
	if c.Ready() {
		t.Fatal("client must not be ready after rejected handshake")
	}
}

func TestConnectionLossFailsPendingCall(t *testing.T) {
	url := startFakeServer(t, UserInfo{ID: "u-1"}, func(req rpcRequest) *rpcResponse {
		return nil // close without answering
	})

	c := New(Options{URL: url, Timeout: 5 * time.Second})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	err := c.Call(context.Background(), "artifact_manager.list", nil, nil)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected not-connected error for orphaned call, got %v", err)
	}
	if c.Ready() {
		t.Fatal("client must drop readiness when the read loop exits")
	}
}

func TestWebsocketURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://hypha.aicell.io", "wss://hypha.aicell.io/ws"},
		{"http://localhost:9527", "ws://localhost:9527/ws"},
		{"wss://hypha.aicell.io/ws", "wss://hypha.aicell.io/ws"},
		{"https://hypha.aicell.io/", "wss://hypha.aicell.io/ws"},
	}
	for _, tc := range cases {
		got, err := websocketURL(tc.in)
		if err != nil {
			t.Fatalf("websocketURL(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("websocketURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := websocketURL("ftp://example.org"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
