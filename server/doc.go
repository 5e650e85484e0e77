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


// Package server exposes the conversational service over HTTP.
//
// The surface is deliberately thin: every endpoint binds a JSON body or a
// path parameter, calls one Service method and maps the error to a status
// code. Lookup misses map to 404, configuration problems to 400 and
// everything else to 500; the pipeline itself knows nothing about HTTP.
package server
