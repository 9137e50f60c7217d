// Package cache keeps a BoltDB history of emitted descriptors so repeated
// emissions can tell whether anything changed.
package cache

import (
	"encoding/hex"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// Snapshot is one emitted descriptor.
type Snapshot struct {
	Mode        string          `msgpack:"mode"`
	Format      string          `msgpack:"format"`
	Fingerprint string          `msgpack:"fingerprint"` // BLAKE3 of the rendered body
	Size        int             `msgpack:"size"`        // uncompressed bytes
	Compression CompressionType `msgpack:"compression"`
	Body        []byte          `msgpack:"body,omitempty"`
	CreatedAt   int64           `msgpack:"created_at"`
	LastSeen    int64           `msgpack:"last_seen"`
	Count       int             `msgpack:"count"` // emissions that produced this fingerprint
}

// Created returns CreatedAt as a time.
func (s *Snapshot) Created() time.Time {
	return time.Unix(0, s.CreatedAt)
}

// Stats holds store-wide counters.
type Stats struct {
	Emissions     int   `msgpack:"emissions"`
	Unchanged     int   `msgpack:"unchanged"`
	LastEmit      int64 `msgpack:"last_emit"`
	SchemaVersion int   `msgpack:"schema_version"`
	Modes         int   `msgpack:"-"`
	DBBytes       int64 `msgpack:"-"`
}

// CompressionType indicates how a body is stored
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionZstdFast
	CompressionZstdDefault
)

func (c CompressionType) String() string {
	switch c {
	case CompressionZstdFast:
		return "zstd-fast"
	case CompressionZstdDefault:
		return "zstd"
	}
	return "raw"
}

// Constants for compression thresholds
const (
	RawThreshold  = 4 * 1024   // < 4KB stored raw
	FastZstdMax   = 128 * 1024 // 4KB-128KB use zstd fast
	SchemaVersion = 1
)

// HashContent computes BLAKE3 hash of content and returns hex string
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Encode serializes a value to msgpack bytes
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes to a value
func Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
