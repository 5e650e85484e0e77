package core

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Timestamps travel as
// UnixMicro, float32 vector components as their IEEE 754 bit patterns.

// IDMUS serializes ID values in MUS format.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// TurnMUS serializes Turn values in MUS format.
var TurnMUS = turnMUS{}

type turnMUS struct{}

func (turnMUS) Marshal(v Turn, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Role), bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	n += marshalTime(v.Timestamp, bs[n:])
	return n
}

func (turnMUS) Unmarshal(bs []byte) (v Turn, n int, err error) {
	role, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Role = Role(role)
	var n1 int
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Timestamp, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (turnMUS) Size(v Turn) (size int) {
	size = ord.String.Size(string(v.Role))
	size += ord.String.Size(v.Content)
	size += sizeTime(v.Timestamp)
	return size
}

// SessionMUS serializes Session values in MUS format.
var SessionMUS = sessionMUS{}

type sessionMUS struct{}

func (sessionMUS) Marshal(v Session, bs []byte) (n int) {
	n = ord.String.Marshal(v.SessionID, bs)
	n += modelSpecMUS{}.Marshal(v.Model, bs[n:])
	n += marshalStringSlice(v.CardIDs, bs[n:])
	n += varint.Int.Marshal(len(v.Messages), bs[n:])
	for i := range v.Messages {
		n += TurnMUS.Marshal(v.Messages[i], bs[n:])
	}
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (sessionMUS) Unmarshal(bs []byte) (v Session, n int, err error) {
	v.SessionID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Model, n1, err = modelSpecMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CardIDs, n1, err = unmarshalStringSlice(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	length, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	if length < 0 {
		return v, n, fmt.Errorf("negative message count: %d", length)
	}
	if length > 0 {
		v.Messages = make([]Turn, length)
		for i := 0; i < length; i++ {
			v.Messages[i], n1, err = TurnMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return v, n, err
			}
		}
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (sessionMUS) Size(v Session) (size int) {
	size = ord.String.Size(v.SessionID)
	size += modelSpecMUS{}.Size(v.Model)
	size += sizeStringSlice(v.CardIDs)
	size += varint.Int.Size(len(v.Messages))
	for i := range v.Messages {
		size += TurnMUS.Size(v.Messages[i])
	}
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

type modelSpecMUS struct{}

func (modelSpecMUS) Marshal(v ModelSpec, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Provider), bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += marshalStringMap(v.Parameters, bs[n:])
	return n
}

func (modelSpecMUS) Unmarshal(bs []byte) (v ModelSpec, n int, err error) {
	provider, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Provider = Provider(provider)
	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Parameters, n1, err = unmarshalStringMap(bs[n:])
	n += n1
	return v, n, err
}

func (modelSpecMUS) Size(v ModelSpec) (size int) {
	size = ord.String.Size(string(v.Provider))
	size += ord.String.Size(v.Name)
	size += sizeStringMap(v.Parameters)
	return size
}

// UserProfileMUS serializes UserProfile values in MUS format.
var UserProfileMUS = userProfileMUS{}

type userProfileMUS struct{}

func (userProfileMUS) Marshal(v UserProfile, bs []byte) (n int) {
	n = ord.String.Marshal(v.UserID, bs)
	n += marshalStringSlice(v.Content, bs[n:])
	n += ord.String.Marshal(v.AboutUser, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (userProfileMUS) Unmarshal(bs []byte) (v UserProfile, n int, err error) {
	v.UserID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Content, n1, err = unmarshalStringSlice(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.AboutUser, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (userProfileMUS) Size(v UserProfile) (size int) {
	size = ord.String.Size(v.UserID)
	size += sizeStringSlice(v.Content)
	size += ord.String.Size(v.AboutUser)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

// CardMUS serializes Card values in MUS format.
var CardMUS = cardMUS{}

type cardMUS struct{}

func (cardMUS) Marshal(v Card, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.ShortMeaning, bs[n:])
	n += ord.String.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	n += ord.String.Marshal(v.Content.OverallMeaning, bs[n:])
	n += ord.String.Marshal(v.Content.AttuneToTheMoon, bs[n:])
	n += marshalStringSlice(v.Content.AdditionalMeanings, bs[n:])
	n += ord.String.Marshal(v.Content.TheTeaching, bs[n:])
	return n
}

func (cardMUS) Unmarshal(bs []byte) (v Card, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.ShortMeaning, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Kind, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Content.OverallMeaning, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Content.AttuneToTheMoon, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Content.AdditionalMeanings, n1, err = unmarshalStringSlice(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Content.TheTeaching, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (cardMUS) Size(v Card) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.ShortMeaning)
	size += ord.String.Size(v.Kind)
	size += ord.String.Size(v.Category)
	size += ord.String.Size(v.Content.OverallMeaning)
	size += ord.String.Size(v.Content.AttuneToTheMoon)
	size += sizeStringSlice(v.Content.AdditionalMeanings)
	size += ord.String.Size(v.Content.TheTeaching)
	return size
}

// KnowledgeChunkMUS serializes KnowledgeChunk values in MUS format.
var KnowledgeChunkMUS = knowledgeChunkMUS{}

type knowledgeChunkMUS struct{}

func (knowledgeChunkMUS) Marshal(v KnowledgeChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += marshalStringMap(v.Metadata, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (knowledgeChunkMUS) Unmarshal(bs []byte) (v KnowledgeChunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Metadata, n1, err = unmarshalStringMap(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (knowledgeChunkMUS) Size(v KnowledgeChunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Text)
	size += sizeVector(v.Vector)
	size += sizeStringMap(v.Metadata)
	size += sizeTime(v.InsertedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

// CheckpointMUS serializes Checkpoint values in MUS format.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.JobName, bs)
	n += varint.Int.Marshal(v.Processed, bs[n:])
	n += IDMUS.Marshal(v.LastID, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	v.JobName, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Processed, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.LastID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (checkpointMUS) Size(v Checkpoint) (size int) {
	size = ord.String.Size(v.JobName)
	size += varint.Int.Size(v.Processed)
	size += IDMUS.Size(v.LastID)
	size += sizeTime(v.UpdatedAt)
	return size
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("negative slice length: %d", length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalStringMap(v map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for k, val := range v {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(val, bs[n:])
	}
	return n
}

func unmarshalStringMap(bs []byte) (v map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("negative map length: %d", length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make(map[string]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		var key, val string
		key, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		val, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[key] = val
	}
	return v, n, nil
}

func sizeStringMap(v map[string]string) (size int) {
	size = varint.Int.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k)
		size += ord.String.Size(val)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("negative vector length: %d", length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		var bits uint32
		bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[i] = math.Float32frombits(bits)
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}
