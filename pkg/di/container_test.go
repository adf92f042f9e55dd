package di

import (
	"testing"

	"github.com/LeDuy-Vu/serialize-this/pkg/api"
	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/stretchr/testify/assert"
)

type stubStorageFactory struct{ opened int }

func (f *stubStorageFactory) Open(cfg config.Storage) (storage.Storage, error) {
	f.opened++
	return nil, nil
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()

	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())
	assert.IsType(t, &storage.DefaultFactory{}, c.GetStorageFactory())
	assert.IsType(t, &api.DefaultServerStarter{}, c.GetServerFactory().CreateServerStarter())
}

func TestContainerOverrides(t *testing.T) {
	c := NewContainer()

	stub := &stubStorageFactory{}
	c.SetStorageFactory(stub)
	_, _ = c.GetStorageFactory().Open(config.Storage{})
	assert.Equal(t, 1, stub.opened)

	servers := api.NewServerFactory()
	c.SetServerFactory(servers)
	assert.Same(t, servers, c.GetServerFactory())
}
