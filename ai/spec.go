package ai

import (
	"math"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/lunaris/core"
)

// HandleSpecMUS serializes HandleSpec values in MUS format. This is the
// binary value written under the model cache keys.
var HandleSpecMUS = handleSpecMUS{}

type handleSpecMUS struct{}

func (handleSpecMUS) Marshal(v HandleSpec, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Provider), bs)
	n += ord.String.Marshal(v.Model, bs[n:])
	n += ord.String.Marshal(v.BaseURL, bs[n:])
	n += ord.Bool.Marshal(v.HasTemperature, bs[n:])
	n += varint.Uint64.Marshal(math.Float64bits(v.Temperature), bs[n:])
	n += varint.Int.Marshal(v.MaxTokens, bs[n:])
	n += ord.Bool.Marshal(v.Embedding, bs[n:])
	return n
}

func (handleSpecMUS) Unmarshal(bs []byte) (v HandleSpec, n int, err error) {
	provider, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Provider = core.Provider(provider)
	var n1 int
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.BaseURL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.HasTemperature, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	var bits uint64
	bits, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Temperature = math.Float64frombits(bits)
	v.MaxTokens, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Embedding, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (handleSpecMUS) Size(v HandleSpec) (size int) {
	size = ord.String.Size(string(v.Provider))
	size += ord.String.Size(v.Model)
	size += ord.String.Size(v.BaseURL)
	size += ord.Bool.Size(v.HasTemperature)
	size += varint.Uint64.Size(math.Float64bits(v.Temperature))
	size += varint.Int.Size(v.MaxTokens)
	size += ord.Bool.Size(v.Embedding)
	return size
}
