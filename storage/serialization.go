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
	"errors"
	"fmt"
	"time"

	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/claimdesk/core"
)

// IDMUS is the MUS serializer for core.ID.
var IDMUS = idMUS{}

// RecordMUS is the MUS serializer for core.Record.
var RecordMUS = recordMUS{}

type idMUS struct{}

func (idMUS) Marshal(v core.ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v core.ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(u), n, err
}

func (idMUS) Size(v core.ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// Timestamps are stored as Unix microseconds.
type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

type recordMUS struct{}

func (recordMUS) Marshal(v core.Record, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += timeMUS{}.Marshal(v.CreatedAt, bs[n:])
	n += timeMUS{}.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (recordMUS) Unmarshal(bs []byte) (v core.Record, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status string
	status, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = core.Status(status)
	v.CreatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return
}

func (recordMUS) Size(v core.Record) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(string(v.Status))
	size += timeMUS{}.Size(v.CreatedAt)
	return size + timeMUS{}.Size(v.UpdatedAt)
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	if err != nil {
		return 0, decodeError("id", err)
	}
	return id, nil
}

// MarshalRecord serializes a Record to bytes.
func MarshalRecord(record *core.Record) []byte {
	buf := make([]byte, RecordMUS.Size(*record))
	RecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalRecord deserializes a Record from bytes.
func UnmarshalRecord(data []byte) (*core.Record, error) {
	record, _, err := RecordMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("record", err)
	}
	return &record, nil
}

// decodeError wraps a MUS unmarshal failure. Short input is reported as
// ErrTruncatedData, anything else as ErrSerializationFailed.
func decodeError(what string, err error) error {
	if errors.Is(err, mus.ErrTooSmallByteSlice) {
		return fmt.Errorf("%w: decoding %s: %w", ErrTruncatedData, what, err)
	}
	return fmt.Errorf("%w: decoding %s: %w", ErrSerializationFailed, what, err)
}
