package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// PebbleStorage keeps packets in a pebble database
type PebbleStorage struct {
	db *pebble.DB
}

// NewPebbleStorage opens or creates a pebble database at path
func NewPebbleStorage(path string) (*PebbleStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}
	return &PebbleStorage{db: db}, nil
}

// Put stores p under a new KSUID
func (s *PebbleStorage) Put(p *Packet) (ksuid.KSUID, error) {
	id := newID(p)
	data, err := encodePacket(p)
	if err != nil {
		return ksuid.Nil, err
	}
	if err := s.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get loads a packet
func (s *PebbleStorage) Get(id ksuid.KSUID) (*Packet, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer is closed
	return decodePacket(id, append([]byte(nil), data...))
}

// Delete removes a packet
func (s *PebbleStorage) Delete(id ksuid.KSUID) error {
	_, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	closer.Close()

	return s.db.Delete(id.Bytes(), pebble.NoSync)
}

// List returns all packet IDs in KSUID order, oldest second first
func (s *PebbleStorage) List() ([]ksuid.KSUID, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			iter.Close()
			return nil, fmt.Errorf("corrupt key %x: %w", iter.Key(), err)
		}
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Close closes the database
func (s *PebbleStorage) Close() error {
	return s.db.Close()
}
