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


package ai

import "errors"

// Model resolution and generation errors
var (
	// ErrUnknownProvider indicates a provider tag the factory cannot serve.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingAPIKey indicates no credential is configured for the
	// requested provider. Raised before any network use.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrGeneration indicates the backend failed to produce a completion.
	ErrGeneration = errors.New("generation failed")
)
