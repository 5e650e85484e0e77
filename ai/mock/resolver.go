// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"context"
	"sync"

	"github.com/poiesic/lunaris/ai"
)

// MockResolver is a test double for ai.HandleResolver.
// By default every request resolves to the same MockModel; set GetFunc to
// route requests (for example on Request.MaxTokens or RunLabel) when a test
// needs different replies for the detection and generation calls.
type MockResolver struct {
	// GetFunc is called by Get if set.
	GetFunc func(ctx context.Context, req ai.Request) (ai.ModelHandle, error)

	// Model is returned for every request when GetFunc is nil.
	Model *MockModel

	mu       sync.Mutex
	requests []ai.Request
}

var _ ai.HandleResolver = (*MockResolver)(nil)

// NewMockResolver creates a resolver that hands out the given model.
func NewMockResolver(model *MockModel) *MockResolver {
	return &MockResolver{Model: model}
}

// Get records the request and resolves it.
func (r *MockResolver) Get(ctx context.Context, req ai.Request) (ai.ModelHandle, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if r.GetFunc != nil {
		return r.GetFunc(ctx, req)
	}
	return r.Model, nil
}

// Requests returns every recorded request in call order.
func (r *MockResolver) Requests() []ai.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ai.Request, len(r.requests))
	copy(out, r.requests)
	return out
}

// CallCount returns the number of Get calls.
func (r *MockResolver) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// Reset clears recorded requests and injected behavior.
func (r *MockResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = nil
	r.GetFunc = nil
}
