package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/claimdesk/core"
)

// Key prefixes per collection
const (
	claimRecordPrefix     = "clmrec"
	variationRecordPrefix = "varrec"
)

// keyspace holds the key layout of one collection.
//
//	<prefix>:<id>             primary record
//	<prefix>d:<created><id>   created-at index
//	<prefix>seq               ID sequence
type keyspace struct {
	record  []byte
	created []byte
	seq     string
}

// keyspaceFor returns the key layout for a collection.
func keyspaceFor(collection core.Collection) (keyspace, error) {
	var prefix string
	switch collection {
	case core.CollectionClaims:
		prefix = claimRecordPrefix
	case core.CollectionVariations:
		prefix = variationRecordPrefix
	default:
		return keyspace{}, fmt.Errorf("%w: %q", core.ErrUnknownCollection, collection)
	}
	return keyspace{
		record:  []byte(prefix + ":"),
		created: []byte(prefix + "d:"),
		seq:     prefix + "seq",
	}, nil
}

// recordKey generates the primary key for a record.
// IDs are written BigEndian so prefix iteration walks records in ID order.
func (k keyspace) recordKey(id core.ID) []byte {
	buf := make([]byte, len(k.record)+8)
	offset := copy(buf, k.record)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// createdKey generates a composite key for the created-at index.
// Format: prefix:timestamp:id
func (k keyspace) createdKey(createdAt time.Time, id core.ID) []byte {
	buf := make([]byte, len(k.created)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, k.created)
	// BigEndian with the sign bit flipped, so pre-1970 times sort first
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro())^(1<<63))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// createdSeekEnd returns a key past every entry of the created-at index,
// the starting point for reverse iteration.
func (k keyspace) createdSeekEnd() []byte {
	buf := make([]byte, len(k.created)+16)
	offset := copy(buf, k.created)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}
