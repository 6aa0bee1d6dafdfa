package peerhub

import "nexus/backend/internal/models"

// Client is one live participant connection, whatever the transport. It
// abstracts the underlying communication mechanism so the hub can manage
// connections uniformly (and tests can substitute in-memory doubles).
type Client interface {
	// GetConnID returns the opaque per-connection identifier.
	GetConnID() string

	// GetSendChannel returns the channel through which the hub delivers
	// outbound events to this connection. It is a send-only channel.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()

	// Close shuts down the client's outbound side.
	Close()
}
