// Copyright 2026 Poiesic Systems
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
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/hobbyfind/core"
)

// vectorSer serializes embedding vectors as length-prefixed raw float32s.
var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// indexEntrySer is a hand-written MUS serializer for core.IndexEntry.
// Field order: ID, Text, Vector.
type indexEntrySer struct{}

// IndexEntrySer serializes core.IndexEntry values in the MUS format.
var IndexEntrySer = indexEntrySer{}

func (indexEntrySer) Marshal(e core.IndexEntry, bs []byte) (n int) {
	n = varint.Int64.Marshal(int64(e.ID), bs)
	n += ord.String.Marshal(e.Text, bs[n:])
	n += vectorSer.Marshal(e.Vector, bs[n:])
	return
}

func (indexEntrySer) Unmarshal(bs []byte) (e core.IndexEntry, n int, err error) {
	id, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	e.ID = core.ID(id)

	var n1 int
	e.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	e.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (indexEntrySer) Size(e core.IndexEntry) (size int) {
	size = varint.Int64.Size(int64(e.ID))
	size += ord.String.Size(e.Text)
	size += vectorSer.Size(e.Vector)
	return
}

func (indexEntrySer) Skip(bs []byte) (n int, err error) {
	n, err = varint.Int64.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorSer.Skip(bs[n:])
	n += n1
	return
}

// MarshalEntry serializes an IndexEntry to bytes.
func MarshalEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, IndexEntrySer.Size(*entry))
	IndexEntrySer.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes an IndexEntry from bytes.
func UnmarshalEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := IndexEntrySer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &entry, nil
}
