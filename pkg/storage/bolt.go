package storage

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	bolt "go.etcd.io/bbolt"
)

var packetsBucket = []byte("packets")

// BoltStorage keeps packets in a single bbolt bucket
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens or creates a bbolt file at path
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(packetsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStorage{db: db}, nil
}

// Put stores p under a new KSUID
func (s *BoltStorage) Put(p *Packet) (ksuid.KSUID, error) {
	id := newID(p)
	data, err := encodePacket(p)
	if err != nil {
		return ksuid.Nil, err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(packetsBucket).Put(id.Bytes(), data)
	})
	if err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get loads a packet
func (s *BoltStorage) Get(id ksuid.KSUID) (*Packet, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(packetsBucket).Get(id.Bytes())
		if v == nil {
			return ErrNotFound
		}
		// v is only valid for the life of the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodePacket(id, data)
}

// Delete removes a packet
func (s *BoltStorage) Delete(id ksuid.KSUID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(packetsBucket)
		if b.Get(id.Bytes()) == nil {
			return ErrNotFound
		}
		return b.Delete(id.Bytes())
	})
}

// List returns all packet IDs in KSUID order, oldest second first
func (s *BoltStorage) List() ([]ksuid.KSUID, error) {
	var ids []ksuid.KSUID
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(packetsBucket).ForEach(func(k, _ []byte) error {
			id, err := ksuid.FromBytes(k)
			if err != nil {
				return fmt.Errorf("corrupt key %x: %w", k, err)
			}
			ids = append(ids, id)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Close closes the database
func (s *BoltStorage) Close() error {
	return s.db.Close()
}
