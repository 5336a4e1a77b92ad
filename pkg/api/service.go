// Package api exposes the inspection client to collaborators behind a
// uniform success/failure envelope.
package api

import (
	"context"
	"encoding/json"
	"errors"

	"cdpinspect/internal/client"
	"cdpinspect/internal/logger"
	"cdpinspect/internal/storage"
	"cdpinspect/pkg/domain"
)

// Service is the operation surface exposed to collaborators.
type Service interface {
	// Connect discovers a page target and attaches to it.
	Connect(ctx context.Context) Result

	// Disconnect tears the connection down.
	Disconnect() Result

	// Send issues one protocol command and returns its raw result with
	// timestamp fields normalized.
	Send(ctx context.Context, method string, params any) Result

	// RegisterEventHandler subscribes a handler to an exact event name.
	RegisterEventHandler(event string, h domain.EventHandler) Result

	// EnableDomains enables the fixed domain list, tolerating individual
	// failures.
	EnableDomains(ctx context.Context) Result

	// TargetInfo fetches details about the attached target.
	TargetInfo(ctx context.Context) Result

	// NetworkRequests returns the accumulated request records.
	NetworkRequests() Result

	// ConsoleLogs returns the accumulated console entries.
	ConsoleLogs() Result

	// ClearNetwork drops all network records.
	ClearNetwork() Result

	// ClearConsole drops all console entries.
	ClearConsole() Result

	// ArchiveSession persists the current snapshots to the session archive.
	ArchiveSession() Result
}

type service struct {
	client  *client.Client
	archive *storage.Archive
	log     logger.Logger
}

// NewService wraps a client (and an optional archive) in the envelope
// surface. The client is injected, never looked up from global state.
func NewService(c *client.Client, archive *storage.Archive, l logger.Logger) Service {
	if l == nil {
		l = logger.NewNop()
	}
	return &service{client: c, archive: archive, log: l}
}

func (s *service) Connect(ctx context.Context) Result {
	if err := s.client.Connect(ctx); err != nil {
		return fail(err)
	}
	target, _ := s.client.Target()
	return ok("connected", target)
}

func (s *service) Disconnect() Result {
	if err := s.client.Disconnect(); err != nil {
		return fail(err)
	}
	return ok("disconnected", nil)
}

func (s *service) Send(ctx context.Context, method string, params any) Result {
	raw, err := s.client.SendCommand(ctx, method, params)
	if err != nil {
		return fail(err)
	}
	return ok(method+" executed", json.RawMessage(normalizeTimestamps(raw)))
}

func (s *service) RegisterEventHandler(event string, h domain.EventHandler) Result {
	if event == "" || h == nil {
		return fail(errors.New("event name and handler are required"))
	}
	s.client.RegisterEventHandler(event, h)
	return ok("handler registered for "+event, nil)
}

func (s *service) EnableDomains(ctx context.Context) Result {
	if !s.client.Connected() {
		return fail(domain.ErrNotConnected)
	}
	s.client.EnableDomains(ctx)
	return ok("domains enabled", nil)
}

func (s *service) TargetInfo(ctx context.Context) Result {
	raw, err := s.client.TargetInfo(ctx)
	if err != nil {
		return fail(err)
	}
	return ok("target info", json.RawMessage(normalizeTimestamps(raw)))
}

func (s *service) NetworkRequests() Result {
	reqs := s.client.NetworkRequests()
	return ok("network requests", map[string]any{
		"total":    len(reqs),
		"requests": reqs,
	})
}

func (s *service) ConsoleLogs() Result {
	logs := s.client.ConsoleLogs()
	return ok("console logs", map[string]any{
		"total": len(logs),
		"logs":  logs,
	})
}

func (s *service) ClearNetwork() Result {
	s.client.ClearNetworkRequests()
	return ok("network requests cleared", nil)
}

func (s *service) ClearConsole() Result {
	s.client.ClearConsoleLogs()
	return ok("console logs cleared", nil)
}

func (s *service) ArchiveSession() Result {
	if s.archive == nil {
		return fail(errors.New("session archive is not configured"))
	}
	target, _ := s.client.Target()
	id, err := s.archive.SaveSession(target, s.client.NetworkRequests(), s.client.ConsoleLogs())
	if err != nil {
		return fail(err)
	}
	return ok("session archived", map[string]any{"sessionId": id})
}
