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


package storage

import (
	"github.com/poiesic/lunaris/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalTurn serializes a Turn to bytes.
func MarshalTurn(turn *core.Turn) []byte {
	buf := make([]byte, core.TurnMUS.Size(*turn))
	core.TurnMUS.Marshal(*turn, buf)
	return buf
}

// UnmarshalTurn deserializes a Turn from bytes.
func UnmarshalTurn(data []byte) (*core.Turn, error) {
	turn, _, err := core.TurnMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

// MarshalSession serializes a Session to bytes.
func MarshalSession(session *core.Session) []byte {
	buf := make([]byte, core.SessionMUS.Size(*session))
	core.SessionMUS.Marshal(*session, buf)
	return buf
}

// UnmarshalSession deserializes a Session from bytes.
func UnmarshalSession(data []byte) (*core.Session, error) {
	session, _, err := core.SessionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// MarshalProfile serializes a UserProfile to bytes.
func MarshalProfile(profile *core.UserProfile) []byte {
	buf := make([]byte, core.UserProfileMUS.Size(*profile))
	core.UserProfileMUS.Marshal(*profile, buf)
	return buf
}

// UnmarshalProfile deserializes a UserProfile from bytes.
func UnmarshalProfile(data []byte) (*core.UserProfile, error) {
	profile, _, err := core.UserProfileMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// MarshalCard serializes a Card to bytes.
func MarshalCard(card *core.Card) []byte {
	buf := make([]byte, core.CardMUS.Size(*card))
	core.CardMUS.Marshal(*card, buf)
	return buf
}

// UnmarshalCard deserializes a Card from bytes.
func UnmarshalCard(data []byte) (*core.Card, error) {
	card, _, err := core.CardMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// MarshalChunk serializes a KnowledgeChunk to bytes.
func MarshalChunk(chunk *core.KnowledgeChunk) []byte {
	buf := make([]byte, core.KnowledgeChunkMUS.Size(*chunk))
	core.KnowledgeChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a KnowledgeChunk from bytes.
func UnmarshalChunk(data []byte) (*core.KnowledgeChunk, error) {
	chunk, _, err := core.KnowledgeChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
