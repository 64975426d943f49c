// Package history persists a log of completed campaign sends so past
// batches can be reviewed after the composing session is gone.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/Centro-Juridico-Internacional/campanero/internal/campaign"
)

var bucketEnvios = []byte("envios")

// Entry is one recorded campaign send.
type Entry struct {
	ID          string              `json:"id"`
	EnviadaEn   time.Time           `json:"enviada_en"`
	NumMensajes int                 `json:"num_mensajes"`
	Asunto      string              `json:"asunto"`
	Resultado   campaign.SendResult `json:"resultado"`
}

// Store is a BoltDB-backed send log. Keys are timestamp-prefixed so a
// reverse cursor walk yields newest entries first.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEnvios)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores one completed send and returns the entry as stored.
func (s *Store) Record(numMensajes int, asunto string, resultado campaign.SendResult) (*Entry, error) {
	entry := &Entry{
		ID:          uuid.New().String(),
		EnviadaEn:   time.Now().UTC(),
		NumMensajes: numMensajes,
		Asunto:      asunto,
		Resultado:   resultado,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	key := []byte(entry.EnviadaEn.Format(time.RFC3339Nano) + "_" + entry.ID)
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEnvios).Put(key, data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store entry: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first. A limit of 0 returns
// everything.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEnvios).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
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

// Len returns the number of recorded sends.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketEnvios).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
