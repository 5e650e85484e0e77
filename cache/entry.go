package cache

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Entry is the unit stored by the cache. Value carries the caller's bytes
// unchanged; Metadata and Timestamp describe the write.
type Entry struct {
	Key       string
	Value     []byte
	Metadata  map[string]string
	Timestamp time.Time // When the entry was stored
}

// EntryMUS serializes Entry values in MUS format. This is the wire form
// written to the distributed tier, so both tiers hold identical entries.
var EntryMUS = entryMUS{}

type entryMUS struct{}

func (entryMUS) Marshal(v Entry, bs []byte) (n int) {
	n = ord.String.Marshal(v.Key, bs)
	n += varint.Int.Marshal(len(v.Value), bs[n:])
	n += copy(bs[n:], v.Value)
	n += varint.Int.Marshal(len(v.Metadata), bs[n:])
	for k, val := range v.Metadata {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(val, bs[n:])
	}
	n += varint.Int64.Marshal(v.Timestamp.UnixMicro(), bs[n:])
	return n
}

func (entryMUS) Unmarshal(bs []byte) (v Entry, n int, err error) {
	v.Key, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	length, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	if length < 0 {
		return v, n, fmt.Errorf("negative value length: %d", length)
	}
	if length > len(bs[n:]) {
		return v, n, fmt.Errorf("value length %d exceeds remaining %d bytes", length, len(bs[n:]))
	}
	if length > 0 {
		v.Value = make([]byte, length)
		n += copy(v.Value, bs[n:n+length])
	}
	count, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	if count < 0 {
		return v, n, fmt.Errorf("negative metadata length: %d", count)
	}
	if count > 0 {
		v.Metadata = make(map[string]string, count)
		for i := 0; i < count; i++ {
			var key, val string
			key, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return v, n, err
			}
			val, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return v, n, err
			}
			v.Metadata[key] = val
		}
	}
	us, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Timestamp = time.UnixMicro(us)
	return v, n, nil
}

func (entryMUS) Size(v Entry) (size int) {
	size = ord.String.Size(v.Key)
	size += varint.Int.Size(len(v.Value))
	size += len(v.Value)
	size += varint.Int.Size(len(v.Metadata))
	for k, val := range v.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(val)
	}
	size += varint.Int64.Size(v.Timestamp.UnixMicro())
	return size
}
