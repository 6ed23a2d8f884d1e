package resp3

// Kind identifies the element kind of a Node in the pre-order traversal of a RESP3 response tree.
//
// Kind is distinct from Type: Type is the tokenizer's single-byte wire vocabulary, Kind is the
// vocabulary the incremental parser and the adapter protocol are built on. The streaming blob
// variant collapses onto KindStreamedStringPart regardless of which of blob string/error it
// chunks, matching the way the wire itself only distinguishes them by the stream's opening type.
type Kind int

const (
	KindSimpleString Kind = iota
	KindSimpleError
	KindBlobString
	KindBlobError
	KindNumber
	KindDouble
	KindBoolean
	KindNull
	KindBigNumber
	KindVerbatimString
	KindArray
	KindMap
	KindSet
	KindAttribute
	KindPush
	KindStreamedStringPart
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple_string"
	case KindSimpleError:
		return "simple_error"
	case KindBlobString:
		return "blob_string"
	case KindBlobError:
		return "blob_error"
	case KindNumber:
		return "number"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindBigNumber:
		return "big_number"
	case KindVerbatimString:
		return "verbatim_string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindAttribute:
		return "attribute"
	case KindPush:
		return "push"
	case KindStreamedStringPart:
		return "streamed_string_part"
	default:
		return "unknown"
	}
}

// IsAggregate reports whether k carries children rather than a scalar payload.
func (k Kind) IsAggregate() bool {
	switch k {
	case KindArray, KindMap, KindSet, KindAttribute, KindPush:
		return true
	default:
		return false
	}
}

// Multiplicity is the per-element branching factor used to compute the descendant count of an
// aggregate: 2 for map and attribute (key/value pairs), 1 for everything else.
func (k Kind) Multiplicity() int {
	switch k {
	case KindMap, KindAttribute:
		return 2
	default:
		return 1
	}
}

// Node is one element in the pre-order traversal of a RESP3 response tree.
//
// Payload is a slice borrowed from the parser's internal buffer and is only valid until the next
// call to Parser.Parse; adapters that need to retain it must copy it.
type Node struct {
	Kind          Kind
	AggregateSize int64 // declared child count for aggregates (pairs/elements); 1 for scalars
	Depth         int   // nesting level in the pre-order traversal; root is 0
	Payload       []byte
}

// AdapterError is returned by an Adapter's OnNode method to signal that the adapter itself, as
// opposed to the connection, failed to process a node.
type AdapterError struct {
	// Err is the underlying cause.
	Err error
	// ServerError holds the raw payload of a resp3_simple_error/resp3_blob_error frame that was
	// translated into this AdapterError. It is nil for adapter-side validation failures.
	ServerError []byte
}

func (e *AdapterError) Error() string {
	if e.ServerError != nil {
		return "resp3: server error: " + string(e.ServerError)
	}
	return "resp3: adapter error: " + e.Err.Error()
}

func (e *AdapterError) Unwrap() error { return e.Err }

// NewServerError builds the AdapterError delivered for a resp3_simple_error or resp3_blob_error
// frame, per spec: the RESP3 error frame is handed to the adapter, not treated as fatal to the
// connection.
func NewServerError(payload []byte) *AdapterError {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return &AdapterError{Err: ErrServerError, ServerError: cp}
}

// Adapter consumes parser node events and writes them into a caller-chosen destination.
//
// OnNode is called once per Node in pre-order. MaxReadSize is a flow-control hint naming how much
// of the connection's read buffer the adapter wants the parser to grow before yielding; returning
// 0 means "no opinion". Parser does not call MaxReadSize: reads are bounded only by
// Reader.SingleReadSizeLimit. SupportedResponses is checked by conn's Exec at submit time to
// reject a Tuple adapter whose arity doesn't match the request's command count.
type Adapter interface {
	OnNode(n Node) error
	MaxReadSize(currentBufferSize int) int
	SupportedResponses() int
}

// baseAdapter provides the two flow-control/arity hints with the common defaults (no opinion on
// read size, exactly one top-level response) so built-in adapters only need to implement OnNode.
type baseAdapter struct{}

func (baseAdapter) MaxReadSize(int) int     { return 0 }
func (baseAdapter) SupportedResponses() int { return 1 }
