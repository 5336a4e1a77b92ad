package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdpinspect/pkg/domain"
)

func pendingRequest(id string) domain.NetworkRequest {
	return domain.NetworkRequest{
		RequestID: domain.RequestID(id),
		URL:       "https://api.test/" + id,
		Method:    "GET",
		Timestamp: 1700000000,
		Status:    domain.StatusPending,
	}
}

func TestNetworkLifecycleProgression(t *testing.T) {
	s := NewNetworkStore()
	s.Add(pendingRequest("R1"))

	ok := s.AttachResponse("R1", domain.ResponseInfo{Status: 200, StatusText: "OK", MimeType: "text/html"})
	require.True(t, ok)
	rec, found := s.Get("R1")
	require.True(t, found)
	assert.Equal(t, domain.StatusResponded, rec.Status)
	require.NotNil(t, rec.Response)
	assert.Equal(t, 200, rec.Response.Status)

	require.True(t, s.Complete("R1", 2048))
	rec, _ = s.Get("R1")
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.EqualValues(t, 2048, rec.EncodedDataLength)
}

func TestNetworkLookupMissIsNoOp(t *testing.T) {
	s := NewNetworkStore()
	assert.False(t, s.AttachResponse("nope", domain.ResponseInfo{}))
	assert.False(t, s.Complete("nope", 1))
	assert.False(t, s.Fail("nope", "err", false))
	assert.Zero(t, s.Len())
}

func TestAttachResponseRejectsTerminalStates(t *testing.T) {
	s := NewNetworkStore()
	s.Add(pendingRequest("R1"))
	require.True(t, s.Fail("R1", "net::ERR_FAILED", false))

	// A straggling responseReceived after failure must not flip the state.
	assert.False(t, s.AttachResponse("R1", domain.ResponseInfo{Status: 200}))
	rec, _ := s.Get("R1")
	assert.Equal(t, domain.StatusFailed, rec.Status)
}

func TestNetworkSnapshotIsACopy(t *testing.T) {
	s := NewNetworkStore()
	s.Add(pendingRequest("R1"))

	snap := s.Snapshot()
	snap[0].URL = "mutated"
	snap[0].Status = domain.StatusFailed

	rec, _ := s.Get("R1")
	assert.Equal(t, "https://api.test/R1", rec.URL)
	assert.Equal(t, domain.StatusPending, rec.Status)
}

func TestNetworkClear(t *testing.T) {
	s := NewNetworkStore()
	s.Add(pendingRequest("R1"))
	s.Add(pendingRequest("R2"))
	require.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	_, found := s.Get("R1")
	assert.False(t, found)

	// The store keeps working after a clear.
	s.Add(pendingRequest("R3"))
	assert.Equal(t, 1, s.Len())
}

func TestRedirectReusesRequestID(t *testing.T) {
	s := NewNetworkStore()
	s.Add(pendingRequest("R1"))
	second := pendingRequest("R1")
	second.URL = "https://api.test/redirected"
	s.Add(second)

	// Later events patch the most recent occurrence.
	require.True(t, s.Complete("R1", 10))
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, domain.StatusPending, snap[0].Status)
	assert.Equal(t, domain.StatusCompleted, snap[1].Status)
}

func TestConsoleAppendSnapshotClear(t *testing.T) {
	s := NewConsoleStore()
	s.Append(domain.ConsoleLog{Type: "log", Args: []any{"one"}, Timestamp: 1})
	s.Append(domain.ConsoleLog{Type: "error", Args: []any{"two"}, Timestamp: 2, Exception: true})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "log", snap[0].Type)
	assert.True(t, snap[1].Exception)

	snap[0].Type = "mutated"
	assert.Equal(t, "log", s.Snapshot()[0].Type)

	s.Clear()
	assert.Zero(t, s.Len())
}
