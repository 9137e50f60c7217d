package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	bolt "go.etcd.io/bbolt"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// Record stores body as the latest descriptor for mode. It reports whether
// the body or format differs from the previous emission for that mode.
func (m *Manager) Record(mode models.BuildMode, format string, body []byte) (changed bool, err error) {
	key := []byte(mode.String())
	fingerprint := HashContent(body)
	now := m.now().UnixNano()

	err = m.db.Update(func(tx *bolt.Tx) error {
		descriptors := tx.Bucket([]byte(BucketDescriptors))

		prev, err := getSnapshot(descriptors, key)
		if err != nil {
			return err
		}

		changed = prev == nil || prev.Fingerprint != fingerprint || prev.Format != format

		var snap Snapshot
		if changed {
			stored, ct := m.codec.compress(body)
			snap = Snapshot{
				Mode:        mode.String(),
				Format:      format,
				Fingerprint: fingerprint,
				Size:        len(body),
				Compression: ct,
				Body:        stored,
				CreatedAt:   now,
				LastSeen:    now,
				Count:       1,
			}
			if err := appendHistory(tx, key, snap); err != nil {
				return err
			}
		} else {
			snap = *prev
			snap.LastSeen = now
			snap.Count++
		}

		if err := putSnapshot(descriptors, key, &snap); err != nil {
			return err
		}
		return bumpStats(tx, changed, now)
	})
	if err != nil {
		return false, fmt.Errorf("failed to record descriptor: %w", err)
	}
	return changed, nil
}

// Latest returns the most recent snapshot for mode, or nil if none exists.
// The returned Body is decompressed.
func (m *Manager) Latest(mode models.BuildMode) (*Snapshot, error) {
	var snap *Snapshot
	err := m.db.View(func(tx *bolt.Tx) error {
		var err error
		snap, err = getSnapshot(tx.Bucket([]byte(BucketDescriptors)), []byte(mode.String()))
		return err
	})
	if err != nil || snap == nil {
		return nil, err
	}

	body, err := m.codec.decompress(snap.Body, snap.Compression)
	if err != nil {
		return nil, err
	}
	snap.Body = body
	return snap, nil
}

// History lists up to limit distinct emissions for mode, newest first.
// limit <= 0 means no limit. Bodies are not included.
func (m *Manager) History(mode models.BuildMode, limit int) ([]Snapshot, error) {
	prefix := historyPrefix([]byte(mode.String()))
	var out []Snapshot

	err := m.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(BucketHistory)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var snap Snapshot
			if err := Decode(v, &snap); err != nil {
				return fmt.Errorf("failed to decode history entry: %w", err)
			}
			out = append(out, snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats returns store-wide counters.
func (m *Manager) Stats() (Stats, error) {
	var stats Stats
	err := m.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket([]byte(BucketStats)).Get([]byte(KeyStats)); data != nil {
			if err := Decode(data, &stats); err != nil {
				return fmt.Errorf("failed to decode stats: %w", err)
			}
		}
		stats.SchemaVersion = schemaVersion(tx)
		stats.Modes = tx.Bucket([]byte(BucketDescriptors)).Stats().KeyN
		stats.DBBytes = tx.Size()
		return nil
	})
	return stats, err
}

func getSnapshot(b *bolt.Bucket, key []byte) (*Snapshot, error) {
	data := b.Get(key)
	if data == nil {
		return nil, nil
	}
	// bolt memory is only valid inside the transaction
	var snap Snapshot
	if err := Decode(bytes.Clone(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func putSnapshot(b *bolt.Bucket, key []byte, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return b.Put(key, data)
}

func historyPrefix(mode []byte) []byte {
	return append(bytes.Clone(mode), '/')
}

func appendHistory(tx *bolt.Tx, mode []byte, snap Snapshot) error {
	b := tx.Bucket([]byte(BucketHistory))
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	key := binary.BigEndian.AppendUint64(historyPrefix(mode), seq)

	snap.Body = nil
	return putSnapshot(b, key, &snap)
}

func bumpStats(tx *bolt.Tx, changed bool, now int64) error {
	b := tx.Bucket([]byte(BucketStats))
	var stats Stats
	if data := b.Get([]byte(KeyStats)); data != nil {
		if err := Decode(bytes.Clone(data), &stats); err != nil {
			return fmt.Errorf("failed to decode stats: %w", err)
		}
	}
	stats.Emissions++
	if !changed {
		stats.Unchanged++
	}
	stats.LastEmit = now

	data, err := Encode(&stats)
	if err != nil {
		return err
	}
	return b.Put([]byte(KeyStats), data)
}
