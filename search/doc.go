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


// Package search provides semantic search over the knowledge base.
//
// The Searcher type embeds a query and ranks knowledge chunks by vector
// similarity, then applies a verbatim keyword boost with stop-word
// filtering so that literal matches surface above merely related text.
//
// Results below the caller's similarity threshold are dropped before
// boosting, so the threshold always refers to raw vector similarity.
package search
