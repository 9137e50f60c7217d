package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DBFile is the database file name inside the cache directory.
const DBFile = "history.db"

// Manager provides the main cache interface
type Manager struct {
	db       *bolt.DB
	codec    *codec
	basePath string
	now      func() time.Time
}

// Open opens or creates a cache at the given path
func Open(basePath string, isDev bool) (*Manager, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := &bolt.Options{
		Timeout:      10 * time.Second,
		FreelistType: bolt.FreelistArrayType,
		NoGrowSync:   isDev,
	}

	db, err := bolt.Open(filepath.Join(basePath, DBFile), 0644, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	c, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	m := &Manager{
		db:       db,
		codec:    c,
		basePath: basePath,
		now:      time.Now,
	}

	if err := m.initSchema(); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return m, nil
}

// Close closes the cache
func (m *Manager) Close() error {
	if m.codec != nil {
		m.codec.Close()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Path returns the cache directory.
func (m *Manager) Path() string {
	return m.basePath
}

// initSchema creates all buckets if they don't exist
func (m *Manager) initSchema() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets() {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket([]byte(BucketMeta))
		if meta.Get([]byte(KeySchemaVersion)) == nil {
			v := make([]byte, 4)
			binary.BigEndian.PutUint32(v, SchemaVersion)
			if err := meta.Put([]byte(KeySchemaVersion), v); err != nil {
				return err
			}
		}

		return nil
	})
}

// schemaVersion reads the stored schema version.
func schemaVersion(tx *bolt.Tx) int {
	v := tx.Bucket([]byte(BucketMeta)).Get([]byte(KeySchemaVersion))
	if len(v) != 4 {
		return 0
	}
	return int(binary.BigEndian.Uint32(v))
}

// Clear drops all recorded history, keeping the schema.
func (m *Manager) Clear() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		for _, name := range dataBuckets() {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return fmt.Errorf("failed to delete bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}
