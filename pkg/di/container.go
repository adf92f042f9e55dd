// Package di provides dependency injection container
package di

import (
	"github.com/LeDuy-Vu/serialize-this/pkg/api"     //nolint:depguard
	"github.com/LeDuy-Vu/serialize-this/pkg/storage" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory  api.ServerFactory
	storageFactory storage.Factory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory:  api.NewServerFactory(),
		storageFactory: storage.NewFactory(),
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// GetStorageFactory returns the packet archive factory
func (c *Container) GetStorageFactory() storage.Factory {
	return c.storageFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// SetStorageFactory allows overriding the storage factory (for testing)
func (c *Container) SetStorageFactory(factory storage.Factory) {
	c.storageFactory = factory
}
