package client

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"cdpinspect/pkg/domain"
)

// readLoop is the single background reader for one connection. It classifies
// every message as a reply or an event; parse failures are logged and dropped,
// never fatal to the loop. On transport error it tears the connection down.
func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer c.teardown(conn, done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.log.Debug("transport closed", "error", err)
			return
		}
		c.onMessage(raw)
	}
}

// teardown fails every outstanding command with ErrConnectionLost and flips
// the connection flag so subsequent sends fail fast instead of hanging.
func (c *Client) teardown(conn *websocket.Conn, done chan struct{}) {
	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.state = stateDisconnected
		c.conn = nil
	}
	for id, p := range c.pending {
		p.ch <- commandOutcome{err: domain.ErrConnectionLost}
		delete(c.pending, id)
	}
	c.mu.Unlock()

	close(done)
	c.log.Info("disconnected from devtools")
}

// onMessage classifies one transport message: an id field marks a reply, a
// method field (without id) marks an event.
func (c *Client) onMessage(raw []byte) {
	if !gjson.ValidBytes(raw) {
		c.log.Warn("dropping malformed message from transport", "size", len(raw))
		return
	}
	msg := gjson.ParseBytes(raw)

	if id := msg.Get("id"); id.Exists() {
		c.resolveReply(id.Int(), msg)
		return
	}
	if method := msg.Get("method"); method.Exists() {
		c.routeEvent(method.String(), msg.Get("params"))
		return
	}
	c.log.Warn("dropping message with neither id nor method")
}

func (c *Client) resolveReply(id int64, msg gjson.Result) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		// Timed out or never ours. Late replies are discarded, not errors.
		c.log.Debug("discarding reply for unknown id", "id", id)
		return
	}

	if remote := msg.Get("error"); remote.Exists() {
		p.ch <- commandOutcome{err: &domain.RemoteError{
			Method:  p.method,
			Message: remote.Get("message").String(),
		}}
		return
	}

	result := json.RawMessage("{}")
	if r := msg.Get("result"); r.Exists() {
		result = json.RawMessage(r.Raw)
	}
	p.ch <- commandOutcome{result: result}
}

// routeEvent runs the built-in state accumulators, then fans the event out to
// registered handlers in registration order.
func (c *Client) routeEvent(method string, params gjson.Result) {
	switch method {
	case "Network.requestWillBeSent":
		c.onRequestWillBeSent(params)
	case "Network.responseReceived":
		c.onResponseReceived(params)
	case "Network.loadingFinished":
		c.onLoadingFinished(params)
	case "Network.loadingFailed":
		c.onLoadingFailed(params)
	case "Runtime.consoleAPICalled":
		c.onConsoleAPICalled(params)
	case "Runtime.exceptionThrown":
		c.onExceptionThrown(params)
	}
	c.fanOut(method, params)
}

func (c *Client) fanOut(method string, params gjson.Result) {
	c.handlersMu.RLock()
	handlers := c.handlers[method]
	c.handlersMu.RUnlock()
	if len(handlers) == 0 {
		return
	}

	payload := []byte(params.Raw)
	for i, h := range handlers {
		c.invokeHandler(method, i, h, payload)
	}
}

// invokeHandler isolates one handler: a panic is logged and must not stop the
// remaining handlers or the receive loop.
func (c *Client) invokeHandler(method string, idx int, h domain.EventHandler, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("event handler panicked", "event", method, "handler", idx, "panic", r)
		}
	}()
	h(payload)
}

func (c *Client) onRequestWillBeSent(params gjson.Result) {
	id := domain.RequestID(params.Get("requestId").String())
	if id == "" {
		c.log.Debug("requestWillBeSent without requestId dropped")
		return
	}
	c.network.Add(domain.NetworkRequest{
		RequestID: id,
		URL:       params.Get("request.url").String(),
		Method:    params.Get("request.method").String(),
		Headers:   headerMap(params.Get("request.headers")),
		Timestamp: normalizeTimestamp(params.Get("timestamp")),
		Status:    domain.StatusPending,
	})
}

func (c *Client) onResponseReceived(params gjson.Result) {
	id := domain.RequestID(params.Get("requestId").String())
	resp := domain.ResponseInfo{
		Status:          int(params.Get("response.status").Int()),
		StatusText:      params.Get("response.statusText").String(),
		Headers:         headerMap(params.Get("response.headers")),
		MimeType:        params.Get("response.mimeType").String(),
		RemoteIPAddress: params.Get("response.remoteIPAddress").String(),
		Protocol:        params.Get("response.protocol").String(),
		Timestamp:       normalizeTimestamp(params.Get("timestamp")),
	}
	if !c.network.AttachResponse(id, resp) {
		c.log.Debug("responseReceived for unknown request", "requestId", id)
	}
}

func (c *Client) onLoadingFinished(params gjson.Result) {
	id := domain.RequestID(params.Get("requestId").String())
	if !c.network.Complete(id, params.Get("encodedDataLength").Float()) {
		c.log.Debug("loadingFinished for unknown request", "requestId", id)
	}
}

func (c *Client) onLoadingFailed(params gjson.Result) {
	id := domain.RequestID(params.Get("requestId").String())
	if !c.network.Fail(id, params.Get("errorText").String(), params.Get("canceled").Bool()) {
		c.log.Debug("loadingFailed for unknown request", "requestId", id)
	}
}

func (c *Client) onConsoleAPICalled(params gjson.Result) {
	var args []any
	params.Get("args").ForEach(func(_, arg gjson.Result) bool {
		switch {
		case arg.Get("value").Exists():
			args = append(args, arg.Get("value").Value())
		case arg.Get("description").Exists():
			args = append(args, arg.Get("description").String())
		default:
			// No primitive value available; keep the raw remote object text.
			args = append(args, arg.Raw)
		}
		return true
	})

	c.console.Append(domain.ConsoleLog{
		Type:               params.Get("type").String(),
		Args:               args,
		Timestamp:          normalizeTimestamp(params.Get("timestamp")),
		ExecutionContextID: int(params.Get("executionContextId").Int()),
		StackTrace:         rawOrNil(params.Get("stackTrace")),
	})
}

func (c *Client) onExceptionThrown(params gjson.Result) {
	details := params.Get("exceptionDetails")
	msg := details.Get("text").String()
	if d := details.Get("exception.description"); d.Exists() {
		msg = d.String()
	}
	if msg == "" {
		msg = "Unknown error"
	}

	c.console.Append(domain.ConsoleLog{
		Type:               "error",
		Args:               []any{msg},
		Timestamp:          normalizeTimestamp(params.Get("timestamp")),
		ExecutionContextID: int(details.Get("executionContextId").Int()),
		StackTrace:         rawOrNil(details.Get("stackTrace")),
		Exception:          true,
	})
}

func headerMap(res gjson.Result) map[string]string {
	if !res.IsObject() {
		return nil
	}
	out := make(map[string]string)
	res.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.String()
		return true
	})
	return out
}

func rawOrNil(res gjson.Result) json.RawMessage {
	if !res.Exists() {
		return nil
	}
	return json.RawMessage(res.Raw)
}
