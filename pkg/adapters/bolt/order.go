// Package bolt persists the open-notes session order in a bbolt database.
package bolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/aretw0/stickies/pkg/core"
)

// DefaultFileName is the database file name inside the data directory.
const DefaultFileName = "session.db"

var (
	bucketSession = []byte("session")
	keyOpenNotes  = []byte("open_notes")
)

// Order implements core.SessionOrder. Ids are kept least recently focused first.
type Order struct {
	db *bbolt.DB
	mu sync.Mutex
}

// Open opens (or creates) the session database at path.
func Open(path string) (*Order, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Order{db: db}, nil
}

// Order returns the remembered ids, least recently focused first.
func (o *Order) Order() ([]core.NoteID, error) {
	var ids []core.NoteID
	err := o.db.View(func(tx *bbolt.Tx) error {
		var err error
		ids, err = readOrder(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Touch moves id to the end of the order, adding it if absent.
func (o *Order) Touch(id core.NoteID) error {
	return o.update(func(ids []core.NoteID) []core.NoteID {
		ids = slices.DeleteFunc(ids, func(v core.NoteID) bool { return v == id })
		return append(ids, id)
	})
}

// Remove forgets id. Removing an unknown id is not an error.
func (o *Order) Remove(id core.NoteID) error {
	return o.update(func(ids []core.NoteID) []core.NoteID {
		return slices.DeleteFunc(ids, func(v core.NoteID) bool { return v == id })
	})
}

// Close releases the database file.
func (o *Order) Close() error {
	return o.db.Close()
}

func (o *Order) update(fn func([]core.NoteID) []core.NoteID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.db.Update(func(tx *bbolt.Tx) error {
		ids, err := readOrder(tx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(fn(ids))
		if err != nil {
			return err
		}
		b := tx.Bucket(bucketSession)
		if b == nil {
			return errors.New("session bucket missing")
		}
		return b.Put(keyOpenNotes, raw)
	})
}

func readOrder(tx *bbolt.Tx) ([]core.NoteID, error) {
	b := tx.Bucket(bucketSession)
	if b == nil {
		return nil, nil
	}
	raw := b.Get(keyOpenNotes)
	if raw == nil {
		return nil, nil
	}
	var ids []core.NoteID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode session order: %w", err)
	}
	return ids, nil
}

var _ core.SessionOrder = (*Order)(nil)
