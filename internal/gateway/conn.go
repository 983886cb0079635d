package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by Send after the connection has been closed,
// either locally or by the server.
var ErrClosed = errors.New("connection closed")

// Config holds configuration for the room WebSocket connection.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
}

// DefaultConfig returns default WebSocket configuration.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   64 * 1024,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
}

// Conn is a client-side duplex connection to a game room. Inbound
// frames are delivered strictly in arrival order on the Inbound
// channel; the channel is closed when the connection dies. There is no
// reconnect: a closed Conn stays closed.
type Conn struct {
	ws     *websocket.Conn
	config Config

	send    chan []byte
	inbound chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// RoomURL builds the WebSocket URL for a room from the HTTP base URL,
// carrying the local identity as query parameters.
func RoomURL(baseURL, roomID, userID, userName string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	u.Path = "/api/room/" + roomID
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("user_name", userName)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Dial opens the connection and starts the read/write pumps.
func Dial(ctx context.Context, wsURL string, config Config) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: config.HandshakeTimeout,
		ReadBufferSize:   config.ReadBufferSize,
		WriteBufferSize:  config.WriteBufferSize,
	}

	ws, resp, err := dialer.DialContext(ctx, wsURL, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}

	c := &Conn{
		ws:      ws,
		config:  config,
		send:    make(chan []byte, 16),
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()

	log.Info().Str("url", wsURL).Msg("room connection established")
	return c, nil
}

// Inbound returns the channel of raw inbound frames. The channel is
// closed when the connection is lost or Close is called.
func (c *Conn) Inbound() <-chan []byte {
	return c.inbound
}

// Send queues a frame for delivery. It never blocks on the network;
// frames are written by the write pump in order.
func (c *Conn) Send(message []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	select {
	case <-c.closed:
		return ErrClosed
	case c.send <- message:
		return nil
	}
}

// Close tears down the connection. Safe to call more than once; only
// the first call has any effect.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		deadline := time.Now().Add(c.config.WriteTimeout)
		c.ws.SetWriteDeadline(deadline)
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.ws.Close()
		log.Info().Msg("room connection closed")
	})
	return nil
}

// writePump serializes all writes to the socket and keeps the
// connection alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return

		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Msg("failed to write message to room connection")
				c.Close()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Msg("failed to send ping")
				c.Close()
				return
			}
		}
	}
}

// readPump delivers inbound frames in arrival order until the socket
// dies, then closes the inbound channel so the session observes the
// disconnect.
func (c *Conn) readPump() {
	defer func() {
		c.Close()
		close(c.inbound)
	}()

	c.ws.SetReadLimit(c.config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("unexpected room connection close")
			}
			return
		}

		select {
		case c.inbound <- message:
		case <-c.closed:
			return
		}
	}
}
