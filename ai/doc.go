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


// Package ai resolves chat and embedding model handles for the
// conversation pipeline.
//
// The package defines the consumer-facing interfaces:
//
//   - ModelHandle: a ready chat model (Generate over an ordered transcript)
//   - Embedder: text embedding generation
//   - HandleResolver: request → handle resolution (implemented by Factory)
//
// Factory is the production resolver. It normalizes requests against the
// configured provider defaults, memoizes default-configuration handle specs
// in a cache.ModelCache under the "openai_model"/"gemini_model"/"embeddings"
// keys, and constructs handles through the ai/openai wire package. Both
// providers ride the same OpenAI-compatible client; gemini requests are
// pointed at Google's compatibility endpoint.
//
// Credentials are checked when a handle is requested, never at construction,
// so a deployment configured for a single provider only needs that
// provider's key.
//
// Test doubles for all three interfaces live in ai/mock.
package ai
