// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"go.uber.org/zap"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer builds a Server with fresh metrics and runs it
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	store CartStore,
	journal Journal,
	config ServerConfig,
	logger *zap.Logger,
) error {
	server := NewServer(store, journal, config, NewMetrics(), logger)
	return StartServer(ctx, server)
}
