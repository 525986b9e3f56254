package request

// query is one tracked outbound request for a single word variant.
// Owned exclusively by the queue of its request; mutated once when the
// transport reports completion, never reopened after draining.
type query struct {
	id        QueryID
	word      string // the word this query stands for (sent form may differ)
	completed bool
	outcome   Outcome
}

// queryQueue is a FIFO of in-flight queries for one lookup. Completions
// are recorded in place in arbitrary order; entries leave the queue only
// from the front, and only once completed. A redirect policy may prepend
// a new entry ahead of everything still unprocessed.
type queryQueue struct {
	entries []*query
}

// pushBack appends a pending entry.
func (q *queryQueue) pushBack(id QueryID, word string) {
	q.entries = append(q.entries, &query{id: id, word: word})
}

// pushFront inserts a pending entry ahead of all remaining entries.
func (q *queryQueue) pushFront(id QueryID, word string) {
	q.entries = append([]*query{{id: id, word: word}}, q.entries...)
}

// markCompleted records the transport outcome against the matching entry.
// Returns false if id is unknown (already drained, e.g. after
// cancellation); that case is silently ignored by callers.
func (q *queryQueue) markCompleted(id QueryID, out Outcome) bool {
	for _, e := range q.entries {
		if e.id == id {
			e.completed = true
			e.outcome = out
			return true
		}
	}
	return false
}

// drainReady pops and returns the front entry if it is completed, or nil
// when the queue is empty or the front entry is still pending. Draining
// one entry at a time lets a policy prepend ahead of entries that were
// already completed but not yet processed.
func (q *queryQueue) drainReady() *query {
	if len(q.entries) == 0 || !q.entries[0].completed {
		return nil
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

// empty reports whether all entries have been drained.
func (q *queryQueue) empty() bool { return len(q.entries) == 0 }

// clear drops every remaining entry and returns the IDs of those still
// pending, so the caller can abort them at the transport.
func (q *queryQueue) clear() []QueryID {
	var pending []QueryID
	for _, e := range q.entries {
		if !e.completed {
			pending = append(pending, e.id)
		}
	}
	q.entries = nil
	return pending
}
