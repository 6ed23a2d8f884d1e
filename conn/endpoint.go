package conn

import "time"

// Endpoint identifies a Redis-compatible server to dial and authenticate against, per spec §6.
// Resolution and dialing themselves are out of the core's scope — Endpoint only carries the
// handshake parameters the run supervisor needs once a stream collaborator already exists.
type Endpoint struct {
	Host string
	Port string

	Username string
	Password string

	// Role, when non-empty, is asserted against the server's ROLE reply during handshake; "" skips
	// the assertion.
	Role string
}

// Timeouts enumerates the config options of spec §5, with the defaults spec names.
type Timeouts struct {
	ResolveTimeout        time.Duration
	ConnectTimeout        time.Duration
	SSLHandshakeTimeout   time.Duration
	HandshakeTimeout      time.Duration
	RESP3HandshakeTimeout time.Duration
	PingInterval          time.Duration
}

// DefaultTimeouts returns the spec §5 defaults: 10s resolve/connect/handshake, 2s RESP3 handshake,
// 1s ping interval.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ResolveTimeout:        10 * time.Second,
		ConnectTimeout:        10 * time.Second,
		SSLHandshakeTimeout:   10 * time.Second,
		HandshakeTimeout:      10 * time.Second,
		RESP3HandshakeTimeout: 2 * time.Second,
		PingInterval:          time.Second,
	}
}
