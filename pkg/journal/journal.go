// Package journal keeps a history of cart snapshots in a pebble database.
//
// Each snapshot is stored as the encoded cart text under a KSUID key, so the
// keys sort by creation time and iteration order is history order.
package journal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/sharecart/pkg/cart"
)

var (
	// ErrNotFound is returned for ids with no snapshot.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidID is returned for ids that are not KSUIDs.
	ErrInvalidID = errors.New("invalid snapshot id")
)

// Entry is one snapshot
type Entry struct {
	ID     string      `json:"id" yaml:"id"`
	Time   time.Time   `json:"time" yaml:"time"`
	Record cart.Record `json:"record" yaml:"record"`
}

// Journal stores cart snapshots
type Journal struct {
	db     *pebble.DB
	codec  *cart.Codec
	logger *zap.Logger

	mutex sync.Mutex
	last  ksuid.KSUID // newest key written, keeps ids strictly increasing
}

// Open opens or creates the journal in dir. A nil codec uses cart.NewCodec.
func Open(dir string, codec *cart.Codec) (*Journal, error) {
	if codec == nil {
		codec = cart.NewCodec()
	}

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db, codec: codec, logger: zap.NewNop()}
	if err := j.loadLast(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// SetLogger sets the logger used to report unreadable snapshots
func (j *Journal) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	j.logger = logger
}

func (j *Journal) loadLast() error {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	if iter.Last() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return fmt.Errorf("corrupt journal key: %w", err)
		}
		j.last = id
	}
	return iter.Error()
}

// Append stores a snapshot of r
func (j *Journal) Append(r cart.Record) (Entry, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	id := ksuid.New()
	if ksuid.Compare(id, j.last) <= 0 {
		id = j.last.Next()
	}

	if err := j.db.Set(id.Bytes(), []byte(j.codec.Encode(r)), pebble.Sync); err != nil {
		return Entry{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	j.last = id

	return Entry{ID: id.String(), Time: id.Time(), Record: r}, nil
}

// Get returns the snapshot with the given id
func (j *Journal) Get(id string) (Entry, error) {
	key, err := ksuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}

	data, closer, err := j.db.Get(key.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	defer closer.Close()

	return j.entry(key, data)
}

// List returns snapshots newest first. limit <= 0 returns all of them.
// Snapshots that no longer decode are logged and skipped.
func (j *Journal) List(limit int) ([]Entry, error) {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(entries) >= limit {
			break
		}

		key, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			j.logger.Warn("skipping corrupt journal key", zap.Binary("key", iter.Key()), zap.Error(err))
			continue
		}
		entry, err := j.entry(key, iter.Value())
		if err != nil {
			j.logger.Warn("skipping unreadable snapshot", zap.String("id", key.String()), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return entries, nil
}

// Delete removes the snapshot with the given id, whether or not it decodes
func (j *Journal) Delete(id string) error {
	key, err := ksuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}

	_, closer, err := j.db.Get(key.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	closer.Close()

	if err := j.db.Delete(key.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Prune deletes all but the newest keep snapshots and reports how many were
// removed.
func (j *Journal) Prune(keep int) (int, error) {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to open iterator: %w", err)
	}

	batch := j.db.NewBatch()
	defer batch.Close()

	seen, removed := 0, 0
	for valid := iter.Last(); valid; valid = iter.Prev() {
		seen++
		if seen <= keep {
			continue
		}
		if err := batch.Delete(iter.Key(), nil); err != nil {
			iter.Close()
			return 0, fmt.Errorf("failed to stage delete: %w", err)
		}
		removed++
	}
	if err := iter.Close(); err != nil {
		return 0, fmt.Errorf("failed to scan snapshots: %w", err)
	}

	if removed == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return removed, nil
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}

// entry decodes a stored value. data may be reused by pebble after the call,
// the decoded record copies what it keeps.
func (j *Journal) entry(id ksuid.KSUID, data []byte) (Entry, error) {
	record, err := j.codec.Decode(string(data))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return Entry{ID: id.String(), Time: id.Time(), Record: record}, nil
}
