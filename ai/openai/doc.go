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


// Package openai provides the wire-level chat and embedding handles over
// OpenAI-compatible APIs, using the langchaingo client.
//
// The same ChatModel type serves both providers: openai handles talk to the
// native API, gemini handles are constructed with Google's OpenAI-compatible
// endpoint as BaseURL. Handle construction is purely local; credentials and
// endpoints are only exercised on the first Generate or Embed call.
//
// This package deliberately has no dependency on the parent ai package:
// ai.Factory composes these concrete types behind the ai interfaces.
package openai
