package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SubscribeTimeout bounds the wait for a subscription id.
	SubscribeTimeout time.Duration

	Logger *zap.Logger
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		SubscribeTimeout:  30 * time.Second,
	}
}

// signatureSub tracks one live signatureSubscribe for dispatch and resubscription.
type signatureSub struct {
	signature  string
	commitment Commitment
	ch         chan SignatureNotification
	once       sync.Once
}

func (s *signatureSub) close() {
	s.once.Do(func() { close(s.ch) })
}

// deliver sends n and closes the channel, unless the subscription was already closed.
func (s *signatureSub) deliver(n SignatureNotification) {
	s.once.Do(func() {
		s.ch <- n // buffered, never blocks
		close(s.ch)
	})
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig
	logger   *zap.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps server subscription ID to subscriber
	subs   map[int64]*signatureSub
	subsMu sync.Mutex

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.SubscribeTimeout == 0 {
		cfg.SubscribeTimeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		logger:      logger,
		subs:        make(map[int64]*signatureSub),
		pendingSubs: make(map[uint64]chan int64),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes WebSocket connection.
func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeSignature subscribes to a signature reaching commitment.
func (c *WSClientImpl) SubscribeSignature(ctx context.Context, signature string, commitment Commitment) (*SignatureSubscription, error) {
	sub := &signatureSub{
		signature:  signature,
		commitment: commitment,
		ch:         make(chan SignatureNotification, 1),
	}

	subID, err := c.subscribe(ctx, sub)
	if err != nil {
		return nil, err
	}

	c.subsMu.Lock()
	c.subs[subID] = sub
	c.subsMu.Unlock()

	return &SignatureSubscription{
		C:           sub.ch,
		unsubscribe: func() { c.unsubscribe(sub) },
	}, nil
}

// subscribe sends signatureSubscribe and waits for the subscription id.
func (c *WSClientImpl) subscribe(ctx context.Context, sub *signatureSub) (int64, error) {
	if c.closed.Load() {
		return 0, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			sub.signature,
			map[string]string{"commitment": string(sub.commitment)},
		},
	}

	confirmCh := make(chan int64, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = confirmCh
	c.pendingSubsMu.Unlock()

	dropPending := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	if err := c.write(req); err != nil {
		dropPending()
		return 0, fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case subID, ok := <-confirmCh:
		if !ok {
			return 0, fmt.Errorf("client closed")
		}
		return subID, nil
	case <-time.After(c.config.SubscribeTimeout):
		dropPending()
		return 0, fmt.Errorf("subscription timeout after %s", c.config.SubscribeTimeout)
	case <-c.done:
		return 0, fmt.Errorf("client closed")
	case <-ctx.Done():
		dropPending()
		return 0, ctx.Err()
	}
}

// unsubscribe removes sub locally and tells the server. Errors are logged only.
func (c *WSClientImpl) unsubscribe(sub *signatureSub) {
	var subID int64
	found := false

	c.subsMu.Lock()
	for id, s := range c.subs {
		if s == sub {
			subID, found = id, true
			delete(c.subs, id)
			break
		}
	}
	c.subsMu.Unlock()
	sub.close()

	if !found || c.closed.Load() {
		return
	}
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "signatureUnsubscribe",
		Params:  []interface{}{subID},
	}
	if err := c.write(req); err != nil {
		c.logger.Debug("signatureUnsubscribe failed", zap.Int64("subscription", subID), zap.Error(err))
	}
}

func (c *WSClientImpl) write(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(v)
}

// Close closes the WebSocket connection.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.subsMu.Lock()
	for id, sub := range c.subs {
		sub.close()
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, ch := range c.pendingSubs {
		close(ch)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				c.logger.Warn("websocket read failed, reconnecting", zap.Error(err), zap.Duration("delay", reconnectDelay))
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *WSClientImpl) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	c.resubscribeAll()
}

// resubscribeAll re-registers every live signature subscription after reconnect.
// A signature confirmed while disconnected is reported immediately by the server.
func (c *WSClientImpl) resubscribeAll() {
	c.subsMu.Lock()
	old := make(map[int64]*signatureSub, len(c.subs))
	for id, sub := range c.subs {
		old[id] = sub
	}
	c.subsMu.Unlock()

	for oldID, sub := range old {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		newID, err := c.subscribe(ctx, sub)
		cancel()
		if err != nil {
			c.logger.Warn("resubscribe failed", zap.String("signature", sub.signature), zap.Error(err))
			continue
		}

		c.subsMu.Lock()
		if c.subs[oldID] == sub {
			delete(c.subs, oldID)
			c.subs[newID] = sub
		}
		c.subsMu.Unlock()
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Debug("unparseable websocket message", zap.Error(err))
		return
	}

	switch {
	case env.Method == "signatureNotification" && env.Params != nil:
		c.handleSignatureNotification(env.Params)
	case env.Error != nil:
		c.logger.Warn("websocket error response",
			zap.Uint64("id", env.ID), zap.Int("code", env.Error.Code), zap.String("message", env.Error.Message))
	case env.ID != 0 && len(env.Result) > 0:
		var subID int64
		if err := json.Unmarshal(env.Result, &subID); err == nil {
			c.handleSubscribeResponse(env.ID, subID)
		}
	}
}

// handleSubscribeResponse handles subscription confirmation.
func (c *WSClientImpl) handleSubscribeResponse(reqID uint64, subID int64) {
	c.pendingSubsMu.Lock()
	ch, ok := c.pendingSubs[reqID]
	if ok {
		delete(c.pendingSubs, reqID)
	}
	c.pendingSubsMu.Unlock()

	if ok {
		select {
		case ch <- subID:
		default:
		}
	}
}

// handleSignatureNotification delivers the one-shot notification and drops the subscription;
// the server cancels signature subscriptions after notifying.
func (c *WSClientImpl) handleSignatureNotification(params *wsNotificationParams) {
	c.subsMu.Lock()
	sub, ok := c.subs[params.Subscription]
	if ok {
		delete(c.subs, params.Subscription)
	}
	c.subsMu.Unlock()

	if !ok {
		return
	}

	var value wsSignatureValue
	if err := json.Unmarshal(params.Result.Value, &value); err != nil {
		c.logger.Debug("unexpected signature notification value", zap.Error(err))
	}

	notif := SignatureNotification{Signature: sub.signature, Err: value.Err}
	if params.Result.Context != nil {
		notif.Slot = params.Result.Context.Slot
	}

	sub.deliver(notif)
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// Errors surface on the next read, which reconnects.
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// wsEnvelope covers subscribe responses, errors and notifications.
type wsEnvelope struct {
	JSONRPC string                `json:"jsonrpc"`
	ID      uint64                `json:"id"`
	Result  json.RawMessage       `json:"result"`
	Error   *RPCError             `json:"error"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext      `json:"context"`
	Value   json.RawMessage `json:"value"`
}

type wsContext struct {
	Slot uint64 `json:"slot"`
}

type wsSignatureValue struct {
	Err interface{} `json:"err"`
}
