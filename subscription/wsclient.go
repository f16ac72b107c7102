// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/luxfi/solsniper/log"
)

// wsClient is a minimal JSON-RPC 2.0 pub/sub client over a websocket
// connection, implementing the subset of Solana's subscription protocol the
// subscription layer needs (programSubscribe/accountSubscribe and their
// *Notification/​*Unsubscribe counterparts). Grounded on the teacher's use
// of gorilla/websocket as its wire transport (luxfi/evm go.mod).
type wsClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	nextID  uint64

	mu       sync.Mutex
	pending  map[uint64]chan rpcResponse  // request id -> ack channel
	notifyCh map[uint64]chan json.RawMessage // subscription number -> notification channel

	closed chan struct{}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

type rpcNotification struct {
	Method string `json:"method"`
	Params struct {
		Subscription uint64          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params"`
}

// dialWS opens a websocket connection and starts its read pump.
func dialWS(ctx context.Context, url string) (*wsClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("subscription: dial %s: %w", url, err)
	}
	c := &wsClient{
		conn:     conn,
		pending:  make(map[uint64]chan rpcResponse),
		notifyCh: make(map[uint64]chan json.RawMessage),
		closed:   make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

func (c *wsClient) readPump() {
	defer close(c.closed)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("subscription: websocket read loop exiting", "error", err)
			c.failPending(err)
			return
		}
		c.dispatch(data)
	}
}

func (c *wsClient) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		ch <- rpcResponse{ID: id, Error: &rpcError{Message: err.Error()}}
		delete(c.pending, id)
	}
}

func (c *wsClient) dispatch(data []byte) {
	var probe struct {
		ID     *uint64 `json:"id"`
		Method string  `json:"method"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		log.Warn("subscription: malformed websocket frame", "error", err)
		return
	}

	if probe.ID != nil {
		var resp rpcResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn("subscription: malformed rpc response", "error", err)
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
		return
	}

	if probe.Method != "" {
		var notif rpcNotification
		if err := json.Unmarshal(data, &notif); err != nil {
			log.Warn("subscription: malformed notification", "error", err)
			return
		}
		c.mu.Lock()
		ch, ok := c.notifyCh[notif.Params.Subscription]
		c.mu.Unlock()
		if ok {
			select {
			case ch <- notif.Params.Result:
			default:
				log.Warn("subscription: dropping notification, consumer too slow", "subscription", notif.Params.Subscription)
			}
		}
	}
}

// call sends a JSON-RPC request and blocks for its response.
func (c *wsClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := atomic.AddUint64(&c.nextID, 1)
	ch := make(chan rpcResponse, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("subscription: write %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

// subscribe issues a *Subscribe call and registers a notification channel
// for the returned subscription number.
func (c *wsClient) subscribe(ctx context.Context, method string, params any, buf int) (uint64, <-chan json.RawMessage, error) {
	result, err := c.call(ctx, method, params)
	if err != nil {
		return 0, nil, err
	}
	var subID uint64
	if err := json.Unmarshal(result, &subID); err != nil {
		return 0, nil, fmt.Errorf("subscription: unexpected %s result: %w", method, err)
	}

	ch := make(chan json.RawMessage, buf)
	c.mu.Lock()
	c.notifyCh[subID] = ch
	c.mu.Unlock()
	return subID, ch, nil
}

// unsubscribe issues an *Unsubscribe call and tears down the notification
// channel.
func (c *wsClient) unsubscribe(ctx context.Context, method string, subID uint64) error {
	c.mu.Lock()
	ch, ok := c.notifyCh[subID]
	delete(c.notifyCh, subID)
	c.mu.Unlock()
	if ok {
		close(ch)
	}
	_, err := c.call(ctx, method, []any{subID})
	return err
}

func (c *wsClient) close() error {
	return c.conn.Close()
}
