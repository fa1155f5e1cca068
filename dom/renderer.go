// Package dom implements the interpreter's DOM effect layer and renderer
// protocol client (spec component J): the operations that mutate a
// document's live tree (append/displace content, set attributes) and a
// JSON-RPC-like client that forwards those mutations to an external
// renderer process over a websocket, correlating replies by request id
// the way the teacher's mcp.Client correlates JSON-RPC calls over stdio
// or HTTP.
package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/agentflare-ai/hvml-go/vdom"
)

// DefaultRendererTimeout bounds how long Call waits for a renderer reply
// when the caller's ctx carries no deadline of its own.
const DefaultRendererTimeout = 10 * time.Second

// rpcRequest/rpcResponse mirror the teacher's JSONRPCRequest/
// JSONRPCResponse shape, with the integer id widened to a uuid string
// since renderer requests can be issued concurrently from many
// coroutines sharing one connection.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RendererClient maintains one websocket connection to an external
// renderer and correlates outstanding calls by request id.
type RendererClient struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending map[string]chan *rpcResponse

	writeMu sync.Mutex
}

// DialRenderer opens a websocket connection to a renderer endpoint.
func DialRenderer(ctx context.Context, url string) (*RendererClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dom: dial renderer %s: %w", url, err)
	}
	c := &RendererClient{conn: conn, pending: map[string]chan *rpcResponse{}}
	go c.readLoop()
	return c, nil
}

func (c *RendererClient) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			for _, ch := range c.pending {
				close(ch)
			}
			c.pending = map[string]chan *rpcResponse{}
			c.mu.Unlock()
			return
		}
		var resp rpcResponse
		if json.Unmarshal(data, &resp) != nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

// Call issues method with params and blocks for a matching reply or
// ctx's deadline (DefaultRendererTimeout when ctx has none), whichever
// comes first.
func (c *RendererClient) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultRendererTimeout)
		defer cancel()
	}
	id := uuid.NewString()
	ch := make(chan *rpcResponse, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("dom: marshal renderer request: %w", err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("dom: write renderer request: %w", err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("dom: renderer connection closed while awaiting %s", method)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("dom: renderer error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (c *RendererClient) Close() error { return c.conn.Close() }

// Workspace protocol operations (createWorkspace, createPlainWindow,
// createTabbedWindow, createTabPage, loadDocument) map one-to-one onto
// renderer JSON-RPC methods.

func (c *RendererClient) CreateWorkspace(ctx context.Context, name string) (string, error) {
	raw, err := c.Call(ctx, "createWorkspace", map[string]string{"name": name})
	return decodeHandle(raw, err)
}

func (c *RendererClient) CreatePlainWindow(ctx context.Context, workspace, title string) (string, error) {
	raw, err := c.Call(ctx, "createPlainWindow", map[string]string{"workspace": workspace, "title": title})
	return decodeHandle(raw, err)
}

func (c *RendererClient) CreateTabbedWindow(ctx context.Context, workspace, title string) (string, error) {
	raw, err := c.Call(ctx, "createTabbedWindow", map[string]string{"workspace": workspace, "title": title})
	return decodeHandle(raw, err)
}

func (c *RendererClient) CreateTabPage(ctx context.Context, window, title string) (string, error) {
	raw, err := c.Call(ctx, "createTabPage", map[string]string{"window": window, "title": title})
	return decodeHandle(raw, err)
}

func (c *RendererClient) LoadDocument(ctx context.Context, page string, doc vdom.Document) (string, error) {
	raw, err := c.Call(ctx, "loadDocument", map[string]string{"page": page, "content": doc.TextContent()})
	return decodeHandle(raw, err)
}

func decodeHandle(raw json.RawMessage, err error) (string, error) {
	if err != nil {
		return "", err
	}
	var out struct {
		Handle string `json:"handle"`
	}
	if uerr := json.Unmarshal(raw, &out); uerr != nil {
		return "", fmt.Errorf("dom: decode handle: %w", uerr)
	}
	return out.Handle, nil
}
