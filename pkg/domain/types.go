package domain

import "encoding/json"

type RequestID string
type SessionID string

// Target is a debuggable page exposed by the remote debugging host.
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// RequestStatus tracks the lifecycle of a captured network request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusResponded RequestStatus = "responded"
	StatusCompleted RequestStatus = "completed"
	StatusFailed    RequestStatus = "failed"
)

// ResponseInfo is the response sub-record attached on Network.responseReceived.
type ResponseInfo struct {
	Status          int               `json:"status"`
	StatusText      string            `json:"statusText"`
	Headers         map[string]string `json:"headers"`
	MimeType        string            `json:"mimeType"`
	RemoteIPAddress string            `json:"remoteIPAddress,omitempty"`
	Protocol        string            `json:"protocol,omitempty"`
	Timestamp       float64           `json:"timestamp"`
}

// NetworkRequest records the lifecycle of one request on the inspected page.
// Timestamps are normalized to second scale before the record is stored.
type NetworkRequest struct {
	RequestID         RequestID         `json:"requestId"`
	URL               string            `json:"url"`
	Method            string            `json:"method"`
	Headers           map[string]string `json:"headers"`
	Timestamp         float64           `json:"timestamp"`
	Status            RequestStatus     `json:"status"`
	Response          *ResponseInfo     `json:"response,omitempty"`
	EncodedDataLength float64           `json:"encodedDataLength,omitempty"`
	ErrorText         string            `json:"errorText,omitempty"`
	Canceled          bool              `json:"canceled,omitempty"`
}

// ConsoleLog is one console API call or thrown exception. Immutable once
// appended; the collection is clearable as a whole.
type ConsoleLog struct {
	Type               string          `json:"type"`
	Args               []any           `json:"args"`
	Timestamp          float64         `json:"timestamp"`
	ExecutionContextID int             `json:"executionContextId,omitempty"`
	StackTrace         json.RawMessage `json:"stackTrace,omitempty"`
	Exception          bool            `json:"exception,omitempty"`
}

// EventHandler receives the raw params payload of a protocol event.
type EventHandler func(params []byte)
