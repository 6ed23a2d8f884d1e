package resp3

import "errors"

// Fatal-to-the-connection errors raised while driving the tokenizer/parser (spec §7's
// unknown_resp3_type, not_a_number and unexpected_eof rows) already exist as ErrInvalidType,
// ErrInvalidNumber and ErrUnexpectedEOL in resp.go; the parser propagates those directly instead
// of wrapping them in new sentinels.

// ErrIncompatibleSize is returned when a response or request has a size the receiving side cannot
// handle: by Slice, MapDest and SetDest for a streamed aggregate (no declared size), by Tuple when
// a response arrives after every slot is used, and by conn's Exec for an empty request or a Tuple
// whose slot count differs from the request's command count; spec §7's incompatible_size.
var ErrIncompatibleSize = errors.New("resp3: incompatible size")

// ErrUnsolicitedResponse is returned by the reader task when a non-push frame arrives while the
// request queue is empty.
var ErrUnsolicitedResponse = errors.New("resp3: unsolicited response")

// ErrSingleReadSizeLimitExceeded is wrapped by the error returned by Reader when a blob, string
// or chunk exceeds Reader.SingleReadSizeLimit (or DefaultSingleReadSizeLimit).
var ErrSingleReadSizeLimitExceeded = errors.New("resp3: single read size limit exceeded")

// ErrServerError is the sentinel wrapped by AdapterError when a resp3_simple_error or
// resp3_blob_error frame is delivered to an adapter. It terminates only the owning request.
var ErrServerError = errors.New("resp3: server error")

// Errors produced by the built-in adapters in adapter.go.
var (
	// ErrUnexpectedNull is returned by Into when the response was RESP3 null; use Optional if null
	// is a valid reply for the command.
	ErrUnexpectedNull = errors.New("resp3: unexpected null")

	// ErrNotANumber is returned by a numeric scanInto destination when the payload doesn't parse.
	ErrNotANumber = errors.New("resp3: not a number")

	// ErrUnsupportedDestination is returned by scanInto when dst is neither a built-in scalar
	// pointer type nor a Scanner.
	ErrUnsupportedDestination = errors.New("resp3: unsupported destination type")

	// ErrExpectedAggregate is returned by Slice when the response's top-level Kind is neither
	// array nor set.
	ErrExpectedAggregate = errors.New("resp3: expected array or set")

	// ErrExpectedMap is returned by MapDest when the response's top-level Kind is not map.
	ErrExpectedMap = errors.New("resp3: expected map")

	// ErrExpectedSet is returned by SetDest when the response's top-level Kind is not set.
	ErrExpectedSet = errors.New("resp3: expected set")

	// ErrNestedAggregateNotSupported is returned by Slice, MapDest and SetDest when an element of
	// the aggregate is itself a non-empty (or streamed) aggregate, mirroring aedis's nested_aggregate_not_supported: use
	// NodeDump or a hand-written Adapter for that shape instead.
	ErrNestedAggregateNotSupported = errors.New("resp3: nested aggregate not supported")
)

// Errors produced by the connection multiplexer and run supervisor (spec §7).
var (
	// ErrNotConnected is returned by Exec when CancelIfNotConnected is set and no connection is
	// currently established.
	ErrNotConnected = errors.New("resp3: not connected")

	// ErrCancelled is returned to a caller whose request was cancelled, either explicitly or
	// because the connection was lost before its response arrived.
	ErrCancelled = errors.New("resp3: cancelled")

	// ErrResolveTimeout is returned by the run supervisor when resolving the endpoint's host took
	// longer than the configured ResolveTimeout. The core does not perform resolution itself; this
	// error is surfaced for a transport collaborator that does and reports it.
	ErrResolveTimeout = errors.New("resp3: resolve timeout")

	// ErrConnectTimeout is returned when establishing the transport took longer than
	// ConnectTimeout.
	ErrConnectTimeout = errors.New("resp3: connect timeout")

	// ErrSSLHandshakeTimeout is returned when a TLS handshake (performed by the transport
	// collaborator) took longer than its configured timeout.
	ErrSSLHandshakeTimeout = errors.New("resp3: ssl handshake timeout")

	// ErrHandshakeTimeout is returned (wrapping the write error) when writing the HELLO or ROLE
	// command during the handshake fails, including when the stream's deadline, set from
	// RESP3HandshakeTimeout, expires.
	ErrHandshakeTimeout = errors.New("resp3: resp3 handshake timeout")

	// ErrHandshakeFailed is returned when the HELLO command itself fails (bad credentials,
	// malformed response, negotiated protocol version other than 3).
	ErrHandshakeFailed = errors.New("resp3: handshake failed")

	// ErrUnexpectedServerRole is returned when Endpoint.Role is set and the server's ROLE reply
	// does not match it.
	ErrUnexpectedServerRole = errors.New("resp3: unexpected server role")

	// ErrIdleTimeout is returned by the health checker when no bytes have been read for more than
	// twice the configured ping interval.
	ErrIdleTimeout = errors.New("resp3: idle timeout")

	// ErrExecTimeout is returned to a caller whose per-request timer expired before a response
	// arrived.
	ErrExecTimeout = errors.New("resp3: exec timeout")
)
