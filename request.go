package resp3

import (
	"bytes"
	"strconv"
)

// Config holds the per-request flags enumerated in spec §3's Request.config.
type Config struct {
	// Coalesce allows the writer to fuse this request with adjacent staged requests into one
	// socket write. Default true.
	Coalesce bool

	// CancelOnConnectionLost completes the request with ErrCancelled if the connection drops
	// before a response arrives, rather than waiting for a reconnect. Default true.
	CancelOnConnectionLost bool

	// CancelIfNotConnected completes the request immediately with ErrNotConnected if it is
	// submitted while no connection is established. Default false.
	CancelIfNotConnected bool

	// Retry keeps an already-written request queued for at-least-once resend after a reconnect,
	// instead of failing it. Default false.
	Retry bool
}

// DefaultConfig returns the Config defaults spec §3 lists for a Request: Coalesce and
// CancelOnConnectionLost on, CancelIfNotConnected and Retry off.
func DefaultConfig() Config {
	return Config{Coalesce: true, CancelOnConnectionLost: true}
}

// subscribeCommands names the commands recognized at build time as "expects no reply, only
// pushes", per spec §4.E. PUNSUBSCRIBE and the RESP3 sharded-pubsub verbs SSUBSCRIBE/SUNSUBSCRIBE
// are recognized alongside SUBSCRIBE/UNSUBSCRIBE/PSUBSCRIBE, grounded on
// original_source's examples/redis_client.cpp and examples/chat_room.cpp, which both exercise the
// sharded verbs alongside the base three.
var subscribeCommands = map[string]bool{
	"SUBSCRIBE":    true,
	"UNSUBSCRIBE":  true,
	"PSUBSCRIBE":   true,
	"PUNSUBSCRIBE": true,
	"SSUBSCRIBE":   true,
	"SUNSUBSCRIBE": true,
}

// ToBulk serializes v as one argument of a RESP3 command array, appending it to buf via w. The
// default implementations below cover the scalar shapes a command argument normally takes;
// callers needing something else can implement Bulker instead of relying on the type switch.
type ToBulk func(w *Writer, v any) error

// Bulker is implemented by a caller-defined type that knows how to serialize itself as one
// command argument, for use with Request.PushRange.
type Bulker interface {
	ToBulkRESP3() []byte
}

func defaultToBulk(w *Writer, v any) error {
	switch x := v.(type) {
	case string:
		return w.WriteBlobString([]byte(x))
	case []byte:
		return w.WriteBlobString(x)
	case int:
		return w.WriteBlobString(strconv.AppendInt(nil, int64(x), 10))
	case int64:
		return w.WriteBlobString(strconv.AppendInt(nil, x, 10))
	case uint64:
		return w.WriteBlobString(strconv.AppendUint(nil, x, 10))
	case float64:
		return w.WriteBlobString(strconv.AppendFloat(nil, x, 'g', -1, 64))
	case bool:
		if x {
			return w.WriteBlobString([]byte("1"))
		}
		return w.WriteBlobString([]byte("0"))
	case Bulker:
		return w.WriteBlobString(x.ToBulkRESP3())
	default:
		return ErrUnsupportedDestination
	}
}

// Request is a mutable buffer builder for one or more pipelined RESP3 commands, per spec §3/§4.D.
// A zero-value Request is ready to use with DefaultConfig semantics once Config is set.
type Request struct {
	// Config holds the per-request flags. Set before the first Push/PushRange call, or leave at
	// the zero value and call SetDefaults.
	Config Config

	buf      bytes.Buffer
	w        *Writer
	commands int
	pushOnly bool // true once a subscribe-shaped command has been pushed
}

// NewRequest returns a Request with DefaultConfig applied.
func NewRequest() *Request {
	r := &Request{Config: DefaultConfig()}
	r.w = NewWriter(&r.buf)
	return r
}

// SetDefaults applies DefaultConfig to r.Config; useful after zero-value construction.
func (r *Request) SetDefaults() { r.Config = DefaultConfig() }

func (r *Request) writer() *Writer {
	if r.w == nil {
		r.w = NewWriter(&r.buf)
	}
	return r.w
}

// Push appends one command, auto-encoded as a RESP3 array of blob strings, per spec §4.D.
func (r *Request) Push(cmd string, args ...string) error {
	w := r.writer()
	if err := w.WriteArrayHeader(int64(1 + len(args))); err != nil {
		return err
	}
	if err := w.WriteBlobString([]byte(cmd)); err != nil {
		return err
	}
	for _, a := range args {
		if err := w.WriteBlobString([]byte(a)); err != nil {
			return err
		}
	}
	r.commands++
	if subscribeCommands[cmd] {
		r.pushOnly = true
	}
	return nil
}

// PushRange appends a command whose argument count is drawn from elems, each serialized via
// toBulk (or defaultToBulk, handling string/[]byte/int/int64/uint64/float64/bool/Bulker, when
// toBulk is nil), per spec §4.D's push_range.
func (r *Request) PushRange(cmd string, toBulk ToBulk, elems ...any) error {
	if toBulk == nil {
		toBulk = defaultToBulk
	}
	w := r.writer()
	if err := w.WriteArrayHeader(int64(1 + len(elems))); err != nil {
		return err
	}
	if err := w.WriteBlobString([]byte(cmd)); err != nil {
		return err
	}
	for _, e := range elems {
		if err := toBulk(w, e); err != nil {
			return err
		}
	}
	r.commands++
	if subscribeCommands[cmd] {
		r.pushOnly = true
	}
	return nil
}

// Clear resets r to an empty request, keeping its Config.
func (r *Request) Clear() {
	r.buf.Reset()
	r.commands = 0
	r.pushOnly = false
}

// Size returns the number of commands staged so far.
func (r *Request) Size() int { return r.commands }

// Payload returns the serialized pipeline bytes staged so far. The returned slice is only valid
// until the next Push/PushRange/Clear call.
func (r *Request) Payload() []byte { return r.buf.Bytes() }

// ExpectsReply reports whether the queue should await a response for this request. It is false
// once any command pushed since the last Clear is a subscribe/unsubscribe verb (spec §4.E).
func (r *Request) ExpectsReply() bool { return !r.pushOnly }
