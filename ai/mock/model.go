package mock

import (
	"context"
	"sync"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
)

// MockModel is a test double for ai.ModelHandle.
// It records every transcript it receives and allows custom behavior
// injection via a function field. Safe for concurrent use.
type MockModel struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate returns Reply.
	GenerateFunc func(ctx context.Context, turns []core.Turn) (string, error)

	// Reply is the canned response returned when GenerateFunc is nil.
	Reply string

	mu          sync.Mutex
	calls       int
	transcripts [][]core.Turn
}

var _ ai.ModelHandle = (*MockModel)(nil)

// NewMockModel creates a mock model that answers every transcript with reply.
func NewMockModel(reply string) *MockModel {
	return &MockModel{Reply: reply}
}

// Generate records the transcript and returns the configured response.
func (m *MockModel) Generate(ctx context.Context, turns []core.Turn) (string, error) {
	recorded := make([]core.Turn, len(turns))
	copy(recorded, turns)

	m.mu.Lock()
	m.calls++
	m.transcripts = append(m.transcripts, recorded)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, turns)
	}
	return m.Reply, nil
}

// CallCount returns the number of Generate calls.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastTranscript returns the transcript of the most recent Generate call,
// or nil if Generate was never called.
func (m *MockModel) LastTranscript() []core.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.transcripts) == 0 {
		return nil
	}
	return m.transcripts[len(m.transcripts)-1]
}

// Transcripts returns every recorded transcript in call order.
func (m *MockModel) Transcripts() [][]core.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]core.Turn, len(m.transcripts))
	copy(out, m.transcripts)
	return out
}

// Reset clears recorded calls and injected behavior.
func (m *MockModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.transcripts = nil
	m.GenerateFunc = nil
}
