// Package mock provides test double implementations of the ai interfaces.
//
// This package contains mock implementations of ai.ModelHandle,
// ai.HandleResolver and ai.Embedder for use in unit tests. The mocks allow
// tests to run without model backends and enable controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Canned reply for every request
//	model := mock.NewMockModel(`{"answer": "Xin chào", "language": "Tiếng Việt"}`)
//	resolver := mock.NewMockResolver(model)
//
//	// Route requests to different handles
//	resolver.GetFunc = func(ctx context.Context, req ai.Request) (ai.ModelHandle, error) {
//	    if req.MaxTokens == 10 {
//	        return detectModel, nil
//	    }
//	    return chatModel, nil
//	}
//
//	// Assert on what the pipeline sent
//	turns := model.LastTranscript()
//	count := model.CallCount()
//
// # Default Behavior
//
//   - MockModel: returns its canned Reply and records each transcript
//   - MockResolver: resolves every request to the same MockModel
//   - MockEmbedder: returns deterministic unit vectors based on text hash
package mock
