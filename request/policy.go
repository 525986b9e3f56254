package request

import "strings"

// Policy inspects drained query results and may reject a body in favour of
// a higher-priority follow-up query. Policies are stateful per request; a
// fresh chain must be built for every ArticleRequest.
//
// The engine calls PlanWord/Submitted for caller-initiated queries only;
// redirect queries bypass planning so a policy cannot rewrite its own
// redirects into a loop. Inspect runs on every policy for every drained
// query, and the first non-empty redirect wins.
type Policy interface {
	// PlanWord returns the word to actually submit in place of word.
	PlanWord(word string) string
	// Submitted reports the id assigned to a planned submission, with the
	// word the caller asked for and the word actually sent.
	Submitted(id QueryID, requested, sent string)
	// Inspect examines a drained query. body is the rewritten article
	// fragment; textFound is false when the transport failed or the
	// response carried no usable body. A non-empty return discards the
	// body and requeries the returned word at the front of the queue.
	Inspect(id QueryID, body string, textFound bool) (redirect string)
}

// NopPolicy is an embeddable no-op Policy.
type NopPolicy struct{}

func (NopPolicy) PlanWord(word string) string          { return word }
func (NopPolicy) Submitted(QueryID, string, string)    {}
func (NopPolicy) Inspect(QueryID, string, bool) string { return "" }

// LinkRedirect redirects to the target of a distinctive link found in the
// body. Used when a page is a disambiguation stub that always links to the
// real target.
type LinkRedirect struct {
	NopPolicy
	// Find scans a rewritten body and returns the redirect target word,
	// or "" when the distinctive link is absent.
	Find func(body string) string
}

// Inspect implements Policy.
func (p *LinkRedirect) Inspect(_ QueryID, body string, textFound bool) string {
	if !textFound || p.Find == nil {
		return ""
	}
	return p.Find(body)
}

// SuffixRetry speculatively queries word+Suffix in place of word, falling
// back to the plain word when the speculative query yields no usable body.
//
// This trades one extra round trip in the uncommon case for skipping the
// fetch and parse of a slower fallback page in the common case. It is a
// latency heuristic, not a correctness requirement; deployments where the
// round trip dominates can leave it out of the chain.
type SuffixRetry struct {
	Suffix string

	// pending replacements, in the same relative order as the queue.
	pending []suffixReplacement
}

type suffixReplacement struct {
	id       QueryID
	original string
}

// PlanWord implements Policy.
func (p *SuffixRetry) PlanWord(word string) string {
	if strings.HasSuffix(word, p.Suffix) {
		return word
	}
	return word + p.Suffix
}

// Submitted implements Policy.
func (p *SuffixRetry) Submitted(id QueryID, requested, sent string) {
	if requested != sent {
		p.pending = append(p.pending, suffixReplacement{id: id, original: requested})
	}
}

// Inspect implements Policy. A failed speculative query redirects back to
// the plain word; in every case the bookkeeping entry tying the query to
// its original word is cleared.
func (p *SuffixRetry) Inspect(id QueryID, _ string, textFound bool) string {
	if len(p.pending) == 0 || p.pending[0].id != id {
		return ""
	}
	original := p.pending[0].original
	p.pending = p.pending[1:]
	if !textFound {
		return original
	}
	return ""
}
