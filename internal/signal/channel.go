// Package signal implements the shared event channel used for both call
// signaling and translation control/data events. Events are multiplexed by
// name over a single websocket connection; JSON envelopes carry control
// events and a tagged binary frame carries outbound audio chunks.
package signal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// frameAudioChunk tags a binary message as one PCM16 audio chunk:
	// [kind:1][roomLen:2][room][pcm...], all integers big-endian.
	frameAudioChunk = 0x01
)

var ErrNotConnected = errors.New("signal channel is not connected")

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Channel is a live connection to the signaling server.
type Channel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	connected bool
	handlers  map[string]map[string]func(json.RawMessage)

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the signaling server and starts the dispatch loop.
func Dial(ctx context.Context, url string, header http.Header, logger *slog.Logger) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to signaling server: %w", err)
	}

	ch := newChannel(conn, logger)
	go ch.readLoop()
	return ch, nil
}

func newChannel(conn *websocket.Conn, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		conn:      conn,
		logger:    logger,
		connected: true,
		handlers:  make(map[string]map[string]func(json.RawMessage)),
		done:      make(chan struct{}),
	}
}

// Connected reports whether the channel can currently carry events.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Emit sends one named JSON event.
func (c *Channel) Emit(event string, payload any) error {
	if !c.Connected() {
		return ErrNotConnected
	}

	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", event, err)
		}
		data = encoded
	}

	frame, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", event, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// EmitAudioChunk frames one PCM16 buffer for the room as a single binary
// message so audio never round-trips through JSON.
func (c *Channel) EmitAudioChunk(roomID string, pcm []byte) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	if len(roomID) > 0xFFFF {
		return fmt.Errorf("room id too long: %d bytes", len(roomID))
	}

	frame := make([]byte, 3+len(roomID)+len(pcm))
	frame[0] = frameAudioChunk
	binary.BigEndian.PutUint16(frame[1:3], uint16(len(roomID)))
	copy(frame[3:], roomID)
	copy(frame[3+len(roomID):], pcm)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("failed to send audio chunk: %w", err)
	}
	return nil
}

// On registers a handler for a named event and returns its detach function.
// Handlers run on the read loop in arrival order.
func (c *Channel) On(event string, handler func(json.RawMessage)) func() {
	id := uuid.NewString()

	c.mu.Lock()
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[string]func(json.RawMessage))
	}
	c.handlers[event][id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

// Close tears the connection down. Registered handlers are not invoked
// afterwards.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		_ = c.conn.Close()
	})
	<-c.done
	return nil
}

func (c *Channel) readLoop() {
	defer close(c.done)
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		kind, payload, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) && !errors.Is(err, net.ErrClosed) {
				c.logger.Warn("signal channel read failed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			c.logger.Warn("dropping malformed signal envelope", "error", err)
			continue
		}
		c.dispatch(env.Event, env.Data)
	}
}

func (c *Channel) dispatch(event string, data json.RawMessage) {
	c.mu.Lock()
	registered := c.handlers[event]
	handlers := make([]func(json.RawMessage), 0, len(registered))
	for _, h := range registered {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}
