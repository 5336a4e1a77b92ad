package devtools

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/mafredri/cdp/devtool"

	"cdpinspect/internal/logger"
	"cdpinspect/pkg/domain"
)

// Connector discovers debuggable page targets and opens their websocket
// transport.
type Connector struct {
	devtoolsURL string
	log         logger.Logger
}

func NewConnector(devtoolsURL string, log logger.Logger) *Connector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Connector{devtoolsURL: devtoolsURL, log: log}
}

// Discover queries the discovery endpoint and returns page-type targets in
// the order the endpoint listed them.
func (c *Connector) Discover(ctx context.Context) ([]domain.Target, error) {
	dt := devtool.New(c.devtoolsURL)
	targets, err := dt.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDiscovery, err)
	}

	var pages []domain.Target
	for _, t := range targets {
		if t.Type != devtool.Page {
			continue
		}
		pages = append(pages, domain.Target{
			ID:                   t.ID,
			Type:                 string(t.Type),
			Title:                t.Title,
			URL:                  t.URL,
			WebSocketDebuggerURL: t.WebSocketDebuggerURL,
		})
	}
	c.log.Debug("discovered targets", "pages", len(pages), "total", len(targets))
	return pages, nil
}

// Dial opens the websocket transport of one target.
func (c *Connector) Dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	return conn, nil
}
