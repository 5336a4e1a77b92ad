// Package client implements the Chrome DevTools Protocol client: it
// multiplexes one websocket connection into concurrent command/reply
// exchanges and an event stream, and accumulates network and console state
// from the events it sees.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"cdpinspect/internal/config"
	"cdpinspect/internal/devtools"
	"cdpinspect/internal/logger"
	"cdpinspect/internal/store"
	"cdpinspect/pkg/domain"
)

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// enableDomains is the fixed list issued by EnableDomains.
var enableDomains = []string{
	"Network", "Runtime", "Page", "Performance", "DOM", "CSS", "Security", "DOMStorage",
}

type commandOutcome struct {
	result json.RawMessage
	err    error
}

type pendingCommand struct {
	method string
	ch     chan commandOutcome
}

// Client is the protocol client. Construct it with New and hand the one
// instance to every consumer; there is no ambient global.
type Client struct {
	cfg       *config.Config
	log       logger.Logger
	connector *devtools.Connector

	// nextID only ever increases; ids are unique for the client's lifetime,
	// not just per connection, which keeps late replies across reconnects
	// unambiguous.
	nextID atomic.Int64

	mu      sync.Mutex // guards state, conn, target, pending, done
	state   connState
	conn    *websocket.Conn
	target  domain.Target
	pending map[int64]pendingCommand
	done    chan struct{}

	// gorilla/websocket permits a single concurrent writer.
	writeMu sync.Mutex

	handlersMu sync.RWMutex
	handlers   map[string][]domain.EventHandler

	network *store.NetworkStore
	console *store.ConsoleStore
}

func New(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		cfg:       cfg,
		log:       log,
		connector: devtools.NewConnector(cfg.DevToolsURL(), log),
		pending:   make(map[int64]pendingCommand),
		handlers:  make(map[string][]domain.EventHandler),
		network:   store.NewNetworkStore(),
		console:   store.NewConsoleStore(),
	}
}

// Connect discovers targets, opens the transport to the first page target and
// starts the receive loop. A Connect while already connected (or connecting)
// is rejected with ErrAlreadyConnected rather than superseding the live
// connection, so exactly one receive loop can ever be running.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != stateDisconnected {
		c.mu.Unlock()
		return domain.ErrAlreadyConnected
	}
	c.state = stateConnecting
	c.mu.Unlock()

	targets, err := c.connector.Discover(ctx)
	if err != nil {
		c.abortConnecting()
		return err
	}
	if len(targets) == 0 {
		c.abortConnecting()
		return domain.ErrNoTargets
	}

	target := targets[0]
	conn, err := c.connector.Dial(ctx, target.WebSocketDebuggerURL)
	if err != nil {
		c.abortConnecting()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.target = target
	c.state = stateConnected
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.readLoop(conn, done)

	c.log.Info("connected to target", "title", target.Title, "url", target.URL)
	return nil
}

func (c *Client) abortConnecting() {
	c.mu.Lock()
	c.state = stateDisconnected
	c.mu.Unlock()
}

// Disconnect closes the transport and waits for the receive loop to finish
// tearing down, so no event handler runs after it returns. Outstanding
// commands fail with ErrConnectionLost. Disconnecting while already
// disconnected is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.state != stateConnected {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	done := c.done
	c.mu.Unlock()

	err := conn.Close()
	<-done
	return err
}

// Connected reports whether a receive loop is live.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected
}

// Target returns the target the client attached to.
func (c *Client) Target() (domain.Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.state == stateConnected
}

// SendCommand writes {"id", "method", "params"} to the transport and blocks
// until the matching reply, the command timeout, ctx cancellation, or
// connection teardown. Replies are matched purely by id; arrival order does
// not matter.
func (c *Client) SendCommand(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if params == nil {
		params = struct{}{}
	}

	c.mu.Lock()
	if c.state != stateConnected {
		c.mu.Unlock()
		return nil, domain.ErrNotConnected
	}
	conn := c.conn
	id := c.nextID.Add(1)
	ch := make(chan commandOutcome, 1)
	c.pending[id] = pendingCommand{method: method, ch: ch}
	c.mu.Unlock()

	envelope, err := json.Marshal(struct {
		ID     int64  `json:"id"`
		Method string `json:"method"`
		Params any    `json:"params"`
	}{ID: id, Method: method, Params: params})
	if err != nil {
		c.deregister(id)
		return nil, fmt.Errorf("marshal %s: %w", method, err)
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, envelope)
	c.writeMu.Unlock()
	if err != nil {
		c.deregister(id)
		return nil, fmt.Errorf("write %s: %w", method, err)
	}

	timer := time.NewTimer(c.cfg.CommandTimeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return out.result, nil
	case <-timer.C:
		// Deregister so a late reply cannot resurrect this command.
		c.deregister(id)
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrCommandTimeout, method, c.cfg.CommandTimeout)
	case <-ctx.Done():
		c.deregister(id)
		return nil, ctx.Err()
	}
}

func (c *Client) deregister(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// RegisterEventHandler appends a handler for the exact event method name.
// Handlers run in registration order on the receive loop and are never
// invoked after Disconnect returns; they must not block.
func (c *Client) RegisterEventHandler(event string, h domain.EventHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// EnableDomains issues <domain>.enable for the fixed domain list. Individual
// failures are logged and skipped; the rest still run.
func (c *Client) EnableDomains(ctx context.Context) {
	for _, d := range enableDomains {
		if _, err := c.SendCommand(ctx, d+".enable", nil); err != nil {
			c.log.Warn("failed to enable domain", "domain", d, "error", err)
			continue
		}
		c.log.Debug("domain enabled", "domain", d)
	}
}

// TargetInfo fetches Target.getTargetInfo for the attached target.
func (c *Client) TargetInfo(ctx context.Context) (json.RawMessage, error) {
	return c.SendCommand(ctx, "Target.getTargetInfo", nil)
}

// NetworkRequests returns a copy of the accumulated request records.
func (c *Client) NetworkRequests() []domain.NetworkRequest {
	return c.network.Snapshot()
}

// ConsoleLogs returns a copy of the accumulated console entries.
func (c *Client) ConsoleLogs() []domain.ConsoleLog {
	return c.console.Snapshot()
}

func (c *Client) ClearNetworkRequests() { c.network.Clear() }
func (c *Client) ClearConsoleLogs()     { c.console.Clear() }
