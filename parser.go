package resp3

import (
	"math/big"
	"strconv"
)

// frame tracks one open aggregate while the parser walks its children. remaining is the number
// of not-yet-seen descendants (already multiplied by Kind.Multiplicity); -1 marks a streaming
// aggregate whose size was declared as `?` and which closes on a TypeEnd marker instead.
type frame struct {
	remaining int64
}

// Parser drives a Reader, emitting one Node event per Adapter.OnNode call for every element of a
// RESP3 response tree in pre-order, without materializing the tree itself.
//
// The current nesting depth is always len(stack): every frame on the stack is an ancestor whose
// children are being read at that depth.
//
// A Parser is not safe for concurrent use. It is reusable across responses via Reset.
type Parser struct {
	r     *Reader
	stack []frame
	buf   [64]byte // scratch space for scalar payloads, reused across Parse calls
}

// NewParser returns a Parser reading from r.
func NewParser(r *Reader) *Parser {
	return &Parser{r: r}
}

// Reset discards any partially-parsed state and starts reading from r.
func (p *Parser) Reset(r *Reader) {
	p.r = r
	p.stack = p.stack[:0]
}

// Parse reads exactly one top-level RESP3 element, and everything nested under it, from the
// underlying Reader, calling adapter.OnNode for every element encountered in pre-order.
//
// If the adapter returns an error for some node (an AdapterError, or a server error translated
// from a resp3_simple_error/resp3_blob_error frame per spec §4.C), Parse keeps consuming the rest
// of the tree from the wire so the stream stays in sync, then returns that error once the whole
// top-level element has been read. Only a genuine tokenizer/framing error aborts early, since that
// leaves the stream itself in an unrecoverable state.
func (p *Parser) Parse(adapter Adapter) error {
	p.stack = p.stack[:0]

	var softErr error
	for {
		err := p.step(adapter)
		if err != nil {
			if isFatal(err) {
				return err
			}
			if softErr == nil {
				softErr = err.(adapterError).error
			}
		}
		if len(p.stack) == 0 {
			return softErr
		}
	}
}

// isFatal reports whether err came from the tokenizer/wire (as opposed to an adapter). Adapter
// errors are always handed to us already wrapped; anything else is treated as fatal to the
// connection, matching spec §7's propagation policy.
func isFatal(err error) bool {
	_, ok := err.(adapterError)
	return !ok
}

// adapterError marks an error as originating from Adapter.OnNode rather than the tokenizer, so
// Parse knows to keep draining the wire instead of aborting.
type adapterError struct{ error }

func (p *Parser) depth() int { return len(p.stack) }

func (p *Parser) step(adapter Adapter) error {
	ty, err := p.r.peek()
	if err != nil {
		return err
	}

	if ty == TypeEnd {
		if err := p.r.ReadEnd(); err != nil {
			return err
		}
		return p.closeStreamingFrame()
	}

	if ty == TypeAttribute {
		return p.readAggregate(adapter, ty.Kind(false), p.r.ReadAttributeHeader)
	}

	return p.readValue(adapter, ty)
}

func (p *Parser) readValue(adapter Adapter, ty Type) error {
	switch ty {
	case TypeArray:
		return p.readAggregate(adapter, ty.Kind(false), p.r.ReadArrayHeader)
	case TypeMap:
		return p.readAggregate(adapter, ty.Kind(false), p.r.ReadMapHeader)
	case TypeSet:
		return p.readAggregate(adapter, ty.Kind(false), p.r.ReadSetHeader)
	case TypePush:
		return p.readAggregate(adapter, ty.Kind(false), p.r.ReadPushHeader)
	case TypeSimpleString:
		b, err := p.r.ReadSimpleString(p.buf[:0])
		if err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), b)
	case TypeSimpleError:
		b, err := p.r.ReadSimpleError(p.buf[:0])
		if err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), b)
	case TypeBlobString:
		b, chunked, err := p.r.ReadBlobString(p.buf[:0])
		if err != nil {
			return err
		}
		if chunked {
			return p.readStreamedString(adapter, ty.Kind(true))
		}
		return p.emit(adapter, ty.Kind(false), b)
	case TypeBlobError:
		b, chunked, err := p.r.ReadBlobError(p.buf[:0])
		if err != nil {
			return err
		}
		if chunked {
			return p.readStreamedString(adapter, ty.Kind(true))
		}
		return p.emit(adapter, ty.Kind(false), b)
	case TypeVerbatimString:
		b, err := p.r.ReadVerbatimString(p.buf[:0])
		if err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), b)
	case TypeNumber:
		n, err := p.r.ReadNumber()
		if err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), strconv.AppendInt(p.buf[:0], n, 10))
	case TypeDouble:
		f, err := p.r.ReadDouble()
		if err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), strconv.AppendFloat(p.buf[:0], f, 'g', -1, 64))
	case TypeBoolean:
		b, err := p.r.ReadBoolean()
		if err != nil {
			return err
		}
		if b {
			return p.emit(adapter, ty.Kind(false), []byte("t"))
		}
		return p.emit(adapter, ty.Kind(false), []byte("f"))
	case TypeNull:
		if err := p.r.ReadNull(); err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), nil)
	case TypeBigNumber:
		var n big.Int
		if err := p.r.ReadBigNumber(&n); err != nil {
			return err
		}
		return p.emit(adapter, ty.Kind(false), n.Append(p.buf[:0], 10))
	default:
		return ErrInvalidType
	}
}

type aggregateHeaderFunc func() (n int64, chunked bool, err error)

// readAggregate reads an aggregate (or attribute) header, emits its Node, and either opens a
// streaming frame, pushes a bounded frame for its declared children, or — if empty — immediately
// accounts for it against its own parent.
func (p *Parser) readAggregate(adapter Adapter, kind Kind, read aggregateHeaderFunc) error {
	n, chunked, err := read()
	if err != nil {
		return err
	}

	depth := p.depth()
	nodeErr := adapter.OnNode(Node{Kind: kind, AggregateSize: n, Depth: depth})

	switch {
	case chunked:
		p.stack = append(p.stack, frame{remaining: -1})
	case n > 0:
		p.stack = append(p.stack, frame{remaining: n * int64(kind.Multiplicity())})
	default:
		// An empty (non-streamed) aggregate has no children to wait for; it is itself complete
		// and accounts as a single consumed child of its own parent, same as a scalar.
		p.decrementTop()
		p.closeFinishedFrames()
	}

	if nodeErr != nil {
		return adapterError{nodeErr}
	}
	return nil
}

// emit delivers a scalar (or RESP3 error) Node to the adapter and accounts for it against the
// enclosing frame.
func (p *Parser) emit(adapter Adapter, kind Kind, payload []byte) error {
	depth := p.depth()
	nodeErr := adapter.OnNode(Node{Kind: kind, AggregateSize: 1, Depth: depth, Payload: payload})
	p.decrementTop()
	p.closeFinishedFrames()
	if nodeErr != nil {
		return adapterError{nodeErr}
	}
	return nil
}

func (p *Parser) decrementTop() {
	if len(p.stack) == 0 {
		return
	}
	top := &p.stack[len(p.stack)-1]
	if top.remaining > 0 {
		top.remaining--
	}
}

// closeFinishedFrames pops every frame at the top of the stack whose declared child count has
// been fully consumed, propagating the closure up to its own parent.
func (p *Parser) closeFinishedFrames() {
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if top.remaining != 0 {
			return
		}
		p.stack = p.stack[:len(p.stack)-1]
		p.decrementTop()
	}
}

// closeStreamingFrame closes the innermost streaming aggregate on a TypeEnd marker. Nested
// streaming aggregates close LIFO, per spec §9's open question resolution.
func (p *Parser) closeStreamingFrame() error {
	if len(p.stack) == 0 || p.stack[len(p.stack)-1].remaining != -1 {
		return ErrUnsolicitedResponse
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.decrementTop()
	p.closeFinishedFrames()
	return nil
}

// readStreamedString drains a chunked blob string/error, emitting one KindStreamedStringPart node
// per chunk including the empty terminator chunk, so adapters can see where the stream ends. The
// whole stream is accounted for as a single child of its enclosing frame, same as a plain scalar.
func (p *Parser) readStreamedString(adapter Adapter, kind Kind) error {
	depth := p.depth() + 1
	var softErr error
	for {
		chunk, last, err := p.r.ReadBlobChunk(p.buf[:0])
		if err != nil {
			return err
		}
		if nodeErr := adapter.OnNode(Node{Kind: KindStreamedStringPart, AggregateSize: 1, Depth: depth, Payload: chunk}); nodeErr != nil && softErr == nil {
			softErr = nodeErr
		}
		if last {
			break
		}
	}
	p.decrementTop()
	p.closeFinishedFrames()
	if softErr != nil {
		return adapterError{softErr}
	}
	return nil
}
