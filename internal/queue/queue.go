package queue

import (
	"sync"

	"github.com/rdb3/resp3"
)

// Queue is the FIFO of in-flight Entries for one connection. It is safe for concurrent use:
// Submit is expected to be called from arbitrary caller goroutines while the connection's
// writer/reader tasks drain it from their own, so unlike the rest of the single-executor model in
// spec §5, the queue itself holds a mutex rather than relying on executor affinity — the
// equivalent of spec's "wrap them in a single actor-style mailbox" alternative for multi-threaded
// runtimes, sized down to just this one shared structure.
type Queue struct {
	mu      sync.Mutex
	entries []*Entry
}

// New returns an empty Queue.
func New() *Queue { return &Queue{} }

// Submit appends entry at the back of the queue (state = staged). Submit itself never rejects an
// entry; the "cancel_if_not_connected" check (spec §4.E step 1) is the caller's (Conn.Exec's)
// responsibility since it depends on connection status, which the queue doesn't track.
func (q *Queue) Submit(e *Entry) {
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()
}

// Len returns the number of entries still tracked by the queue (staged or written, not yet done).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// CoalescePrefix returns the contiguous run of staged entries at the front of the queue eligible
// to be fused into one write, per spec §4.E: the first staged entry must itself have
// Coalesce == true to enable fusion with successors, and the run stops at the first
// Coalesce == false entry or the first non-staged entry. A lone Coalesce == false entry at the
// front is returned as a single-element slice (written alone).
func (q *Queue) CoalescePrefix() []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var prefix []*Entry
	for _, e := range q.entries {
		if e.State != StateStaged {
			break
		}
		if len(prefix) == 0 {
			prefix = append(prefix, e)
			if !e.Coalesce {
				break
			}
			continue
		}
		if !e.Coalesce {
			break
		}
		prefix = append(prefix, e)
	}
	return prefix
}

// MarkWritten transitions every entry in written (normally the slice CoalescePrefix returned) from
// staged to written.
func (q *Queue) MarkWritten(written []*Entry) {
	for _, e := range written {
		e.State = StateWritten
	}
}

// CompleteNoReplyPrefix pops and completes (with a nil error) every entry at the front of the
// queue that is written and expects no response (Remaining == 0 on submission, e.g. a
// subscribe-shaped request per spec §4.E). It stops at the first entry still awaiting a response,
// since only the contiguous no-reply prefix can safely be skipped without disturbing FIFO order.
func (q *Queue) CompleteNoReplyPrefix() {
	q.mu.Lock()
	var popped []*Entry
	for len(q.entries) > 0 {
		head := q.entries[0]
		if head.State != StateWritten || head.Remaining != 0 {
			break
		}
		popped = append(popped, head)
		q.entries = q.entries[1:]
	}
	q.mu.Unlock()

	for _, e := range popped {
		e.Complete(nil)
	}
}

// Head returns the front entry of the queue, or nil if the queue is empty.
func (q *Queue) Head() *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0]
}

// CompleteHead decrements the front entry's remaining response count by one. Once it reaches
// zero, the entry is popped and completed with err (nil on success), matching spec §4.G's
// "decrement head.remaining_commands ... if zero: complete head, pop".
func (q *Queue) CompleteHead(err error) {
	q.mu.Lock()
	var popped *Entry
	if len(q.entries) > 0 {
		head := q.entries[0]
		if head.Remaining > 0 {
			head.Remaining--
		}
		if head.Remaining == 0 || err != nil {
			popped = head
			q.entries = q.entries[1:]
		}
	}
	q.mu.Unlock()

	if popped != nil {
		popped.Complete(err)
	}
}

// CancelStaged removes entry from the queue if it is still staged, completing it with
// resp3.ErrCancelled. It reports whether the entry was actually staged (and thus cancelled);
// cancelling an already-written entry is a documented no-op (spec §5's cancellation semantics) and
// CancelStaged returns false in that case so the caller knows the bytes are already on the wire.
func (q *Queue) CancelStaged(target *Entry) bool {
	q.mu.Lock()
	idx := -1
	for i, e := range q.entries {
		if e == target {
			idx = i
			break
		}
	}
	if idx == -1 || q.entries[idx].State != StateStaged {
		q.mu.Unlock()
		return false
	}
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	q.mu.Unlock()

	target.Complete(resp3.ErrCancelled)
	return true
}

// FailStaged removes entries (assumed still staged, e.g. a coalesced prefix that failed to write)
// from the queue and completes each with err. Entries no longer present (already removed by a
// racing cancel) are skipped.
func (q *Queue) FailStaged(entries []*Entry, err error) {
	if len(entries) == 0 {
		return
	}
	toFail := make(map[*Entry]bool, len(entries))
	for _, e := range entries {
		toFail[e] = true
	}

	q.mu.Lock()
	kept := q.entries[:0:0]
	for _, e := range q.entries {
		if toFail[e] {
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	q.mu.Unlock()

	for _, e := range entries {
		e.Complete(err)
	}
}

// RetainForReconnect implements spec §4.I step 5's connection-loss drain: every entry for which
// keep returns false is removed and completed with err (spec §3's default "fail the request");
// every entry for which keep returns true survives, per spec §3's CancelOnConnectionLost == false
// ("wait for reconnection") and spec §5's Retry == true ("stays queued ... for resend"). A kept
// entry's State is reset to StateStaged regardless of whether it was already written, since
// nothing is "on the wire" once the connection itself is gone — a subsequent Run must rewrite it
// from scratch rather than leave it stuck waiting for a reply that will never arrive. Returns the
// number of entries failed.
func (q *Queue) RetainForReconnect(err error, keep func(*Entry) bool) int {
	q.mu.Lock()
	var kept, drained []*Entry
	for _, e := range q.entries {
		if keep(e) {
			e.State = StateStaged
			kept = append(kept, e)
		} else {
			drained = append(drained, e)
		}
	}
	q.entries = kept
	q.mu.Unlock()

	for _, e := range drained {
		e.Complete(err)
	}
	return len(drained)
}

// DrainCancelFiltered removes and completes with err every entry for which keep returns false,
// leaving entries for which keep returns true in place, untouched, at the front of the queue
// (preserving order). It returns the number of entries cancelled. Unlike RetainForReconnect, it
// never resets a surviving entry's State: this backs Conn.Cancel("exec") (spec §5), an explicit
// cancellation issued while the connection is still live, where a kept written entry is still
// legitimately in flight on the wire and must not be rewritten.
func (q *Queue) DrainCancelFiltered(err error, keep func(*Entry) bool) int {
	q.mu.Lock()
	var kept, drained []*Entry
	for _, e := range q.entries {
		if keep(e) {
			kept = append(kept, e)
		} else {
			drained = append(drained, e)
		}
	}
	q.entries = kept
	q.mu.Unlock()

	for _, e := range drained {
		e.Complete(err)
	}
	return len(drained)
}
