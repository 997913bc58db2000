// Package connection владеет постоянным websocket-соединением аккаунта с сервером.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/gophsync/internal/client/backoff"
	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/eventloop"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/pkg/api"
)

const (
	DefaultHealthInterval = 10 * time.Second
	// MaxClosingChecks число тиков health-проверки, после которого зависшее закрытие принудительно обрывается
	MaxClosingChecks = 5

	writeTimeout = 10 * time.Second
)

// ErrNotConnected соединение не установлено
var ErrNotConnected = errors.New("socket not connected")

// Config параметры соединения
type Config struct {
	Backoff        *backoff.Calculator
	Dialer         *websocket.Dialer
	AccountID      string
	ServerURL      string
	SocketURL      string
	Token          string
	HealthInterval time.Duration
}

// Connection соединение одного аккаунта
type Connection struct {
	state        state
	bus          *eventbus.Bus
	logger       *slog.Logger
	backoff      *backoff.Calculator
	dialer       *websocket.Dialer
	health       *eventloop.Loop
	subscription *eventbus.Subscription
	accountID    string
	serverURL    string
	socketURL    string
	token        string
	mu           sync.Mutex
	writeMu      sync.Mutex
	unavailable  bool
}

// New создает соединение в состоянии disconnected
func New(cfg Config, bus *eventbus.Bus, logger *slog.Logger) *Connection {
	c := &Connection{
		state:     disconnected{},
		bus:       bus,
		logger:    logger.With("account_id", cfg.AccountID),
		backoff:   cfg.Backoff,
		dialer:    cfg.Dialer,
		accountID: cfg.AccountID,
		serverURL: cfg.ServerURL,
		socketURL: cfg.SocketURL,
		token:     cfg.Token,
	}
	if c.backoff == nil {
		c.backoff = backoff.New()
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}
	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	c.health = eventloop.New(interval, 0, c.checkHealth)
	return c
}

// Start subscribes to availability changes and starts the health loop,
// which performs the first Init immediately.
func (c *Connection) Start() {
	c.subscription = c.bus.Subscribe(func(event events.Event) {
		e, ok := event.(events.ServerAvailabilityChanged)
		// события доступности других серверов не относятся к этому соединению
		if !ok || e.Server != c.serverURL {
			return
		}
		c.mu.Lock()
		c.unavailable = !e.Available
		c.mu.Unlock()
		c.health.Trigger()
	})
	c.health.Start()
}

// Close stops the health loop and closes the socket without backoff.
func (c *Connection) Close() {
	c.subscription.Unsubscribe()
	c.health.Stop()

	c.mu.Lock()
	ws := socketOf(c.state)
	c.state = disconnected{}
	c.mu.Unlock()

	if ws != nil {
		c.writeMu.Lock()
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = ws.Close()
	}
}

// IsConnected reports whether the socket is open.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.state.(connected)
	return ok
}

// Backoff returns the reconnect policy of the connection.
func (c *Connection) Backoff() *backoff.Calculator {
	return c.backoff
}

// Init opens the socket unless the server is known to be unavailable,
// a backoff window is active or the connection is not disconnected.
func (c *Connection) Init(ctx context.Context) {
	c.mu.Lock()
	if _, ok := c.state.(disconnected); !ok || c.unavailable || !c.backoff.CanRetry() {
		c.mu.Unlock()
		return
	}
	c.state = connecting{}
	c.mu.Unlock()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	ws, resp, err := c.dialer.DialContext(ctx, c.endpoint(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		c.mu.Lock()
		c.state = disconnected{}
		c.mu.Unlock()

		c.backoff.IncreaseError()
		c.logger.Warn("failed to open socket",
			"error", err,
			"failures", c.backoff.Failures(),
			"next_attempt_at", c.backoff.NextAttemptAt(),
		)
		c.bus.Publish(events.SocketClosed{AccountID: c.accountID})
		return
	}

	c.mu.Lock()
	if _, ok := c.state.(connecting); !ok {
		// Close вызван во время установки соединения
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.state = connected{ws: ws}
	c.mu.Unlock()

	c.backoff.Reset()
	c.logger.Info("socket opened")
	c.bus.Publish(events.SocketOpened{AccountID: c.accountID})

	go c.readLoop(ws)
}

// Send writes the message. Returns false if the socket is not connected
// or the write failed; delivery is never guaranteed.
func (c *Connection) Send(msg api.Message) bool {
	c.mu.Lock()
	st, ok := c.state.(connected)
	c.mu.Unlock()
	if !ok {
		return false
	}

	c.writeMu.Lock()
	_ = st.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := st.ws.WriteJSON(msg)
	c.writeMu.Unlock()

	if err != nil {
		c.handleClosed(st.ws, fmt.Errorf("write failed: %w", err))
		return false
	}
	return true
}

func (c *Connection) endpoint() string {
	return fmt.Sprintf("%s/v1/accounts/%s/socket", c.socketURL, url.PathEscape(c.accountID))
}

func (c *Connection) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.handleClosed(ws, err)
			return
		}

		var msg api.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Error("failed to decode socket message", "error", err)
			continue
		}
		c.bus.Publish(events.SocketMessageReceived{AccountID: c.accountID, Message: msg})
	}
}

// handleClosed переводит соединение в disconnected, если ws все еще текущий сокет
func (c *Connection) handleClosed(ws *websocket.Conn, cause error) {
	c.mu.Lock()
	if socketOf(c.state) != ws {
		c.mu.Unlock()
		return
	}
	c.state = disconnected{}
	c.mu.Unlock()

	_ = ws.Close()
	c.backoff.IncreaseError()
	c.logger.Warn("socket closed",
		"error", cause,
		"failures", c.backoff.Failures(),
	)
	c.bus.Publish(events.SocketClosed{AccountID: c.accountID})
}

// checkHealth выполняется event loop-ом: ping при открытом соединении,
// переподключение при закрытом, принудительное закрытие зависшего закрытия
func (c *Connection) checkHealth(ctx context.Context) {
	c.mu.Lock()
	current := c.state
	c.mu.Unlock()

	switch st := current.(type) {
	case connected:
		c.writeMu.Lock()
		err := st.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
		c.writeMu.Unlock()
		if err != nil {
			c.beginClosing(st.ws, err)
		}
	case disconnected:
		c.Init(ctx)
	case closing:
		c.tickClosing(st.ws)
	case connecting:
	}
}

// beginClosing отправляет close frame и ждет ответа сервера
func (c *Connection) beginClosing(ws *websocket.Conn, cause error) {
	c.mu.Lock()
	if st, ok := c.state.(connected); !ok || st.ws != ws {
		c.mu.Unlock()
		return
	}
	c.state = closing{ws: ws}
	c.mu.Unlock()

	c.logger.Warn("socket ping failed, closing", "error", cause)

	c.writeMu.Lock()
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "ping failed"),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
}

func (c *Connection) tickClosing(ws *websocket.Conn) {
	c.mu.Lock()
	st, ok := c.state.(closing)
	if !ok || st.ws != ws {
		c.mu.Unlock()
		return
	}
	st.checks++
	c.state = st
	c.mu.Unlock()

	if st.checks >= MaxClosingChecks {
		c.handleClosed(ws, fmt.Errorf("socket stuck in closing state after %d checks", st.checks))
	}
}
