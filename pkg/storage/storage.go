// Package storage archives encoded packets together with the name of the
// format that produced them.
package storage

import (
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrNotFound is returned when no packet has the requested ID.
	ErrNotFound = errors.New("packet not found")
	// ErrCorrupt is returned when a stored packet fails its checksum.
	ErrCorrupt = errors.New("packet checksum mismatch")
)

// Packet is an archived packet.
type Packet struct {
	ID        ksuid.KSUID `msgpack:"-"`
	Format    string      `msgpack:"format"`
	Data      []byte      `msgpack:"data"`
	CreatedAt time.Time   `msgpack:"created_at"`
	CRC32     uint32      `msgpack:"crc32"` // over Format and Data, set on write
}

// Storage is a packet archive keyed by KSUID.
type Storage interface {
	Put(p *Packet) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*Packet, error)
	Delete(id ksuid.KSUID) error
	List() ([]ksuid.KSUID, error)
	Close() error
}

// Factory opens a Storage for a configuration.
type Factory interface {
	Open(cfg config.Storage) (Storage, error)
}

// DefaultFactory opens the backend named in the configuration.
type DefaultFactory struct{}

// NewFactory creates the default storage factory
func NewFactory() Factory {
	return &DefaultFactory{}
}

// Open implements Factory
func (f *DefaultFactory) Open(cfg config.Storage) (Storage, error) {
	return Open(cfg)
}

// Open opens the configured backend, creating its directory if needed.
func Open(cfg config.Storage) (Storage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	switch cfg.Backend {
	case "", config.BackendPebble:
		return NewPebbleStorage(filepath.Join(cfg.Path, "pebble"))
	case config.BackendBolt:
		return NewBoltStorage(filepath.Join(cfg.Path, "packets.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newID assigns an ID and creation time to p if it has none.
func newID(p *Packet) ksuid.KSUID {
	if p.ID == ksuid.Nil {
		p.ID = ksuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.ID.Time()
	}
	return p.ID
}

// checksum covers the format name and the packet bytes
func (p *Packet) checksum() uint32 {
	crc := crc32.NewIEEE()
	_, _ = crc.Write([]byte(p.Format))
	_, _ = crc.Write([]byte{0})
	_, _ = crc.Write(p.Data)
	return crc.Sum32()
}

func encodePacket(p *Packet) ([]byte, error) {
	p.CRC32 = p.checksum()
	data, err := msgpack.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode packet: %w", err)
	}
	return data, nil
}

func decodePacket(id ksuid.KSUID, data []byte) (*Packet, error) {
	var p Packet
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode packet %s: %w", id, err)
	}
	p.ID = id
	if p.CRC32 != p.checksum() {
		return nil, fmt.Errorf("packet %s: %w", id, ErrCorrupt)
	}
	return &p, nil
}
