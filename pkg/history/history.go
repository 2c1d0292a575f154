// Copyright 2025 walteh LLC
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

// Package history keeps finished copy reports in a bbolt database.
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.etcd.io/bbolt"

	"github.com/walteh/robowatch/pkg/report"
)

// ErrNotFound is returned by Get for an unknown id
var ErrNotFound = errors.New("report not found")

var reportsBucket = []byte("reports")

// 🗄️ Store records finished reports
type Store interface {
	Save(ctx context.Context, r *report.CopyReport) (uint64, error)
	Get(ctx context.Context, id uint64) (report.Entry, error)
	// List returns up to limit entries, newest first; limit <= 0 means all
	List(ctx context.Context, limit int) ([]report.Entry, error)
	Close() error
}

// BoltStore is a Store backed by bbolt
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// DefaultPath is history.db under the user's config directory
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "robowatch", "history.db"), nil
}

// 🏭 Open opens or creates the database at path
func Open(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Errorf("creating history directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("opening history database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Errorf("creating reports bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// 💾 Save stores r under the next sequence number and returns it
func (s *BoltStore) Save(ctx context.Context, r *report.CopyReport) (uint64, error) {
	if r == nil {
		return 0, errors.New("report is nil")
	}
	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(reportsBucket)

		seq, err := b.NextSequence()
		if err != nil {
			return errors.Errorf("allocating id: %w", err)
		}
		data, err := json.Marshal(r)
		if err != nil {
			return errors.Errorf("marshaling report: %w", err)
		}
		if err := b.Put(key(seq), data); err != nil {
			return errors.Errorf("putting report: %w", err)
		}
		id = seq
		return nil
	})
	if err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Debug().Uint64("id", id).Str("source", r.Source).Msg("saved report")
	return id, nil
}

// Get loads the report stored under id
func (s *BoltStore) Get(ctx context.Context, id uint64) (report.Entry, error) {
	var entry report.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(reportsBucket).Get(key(id))
		if data == nil {
			return errors.Errorf("report %d: %w", id, ErrNotFound)
		}
		e, err := decode(id, data)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	return entry, err
}

func (s *BoltStore) List(ctx context.Context, limit int) ([]report.Entry, error) {
	var entries []report.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(reportsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			e, err := decode(binary.BigEndian.Uint64(k), v)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *BoltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Errorf("closing history database: %w", err)
	}
	return nil
}

func decode(id uint64, data []byte) (report.Entry, error) {
	var r report.CopyReport
	if err := json.Unmarshal(data, &r); err != nil {
		return report.Entry{}, errors.Errorf("unmarshaling report %d: %w", id, err)
	}
	return report.Entry{ID: id, Report: &r}, nil
}

// key encodes id big-endian so cursor order is insertion order
func key(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}
