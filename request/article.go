package request

import (
	"log/slog"
	"sync"
	"unicode/utf8"
)

// Config wires an ArticleRequest to its source-specific collaborators.
type Config struct {
	Transport Transport

	// BuildURL turns a word into the remote query URL.
	BuildURL func(word string) string

	// Extract pulls the article fragment out of a raw response body.
	// textFound reports whether the response carried a usable article;
	// a non-nil error is recorded as the request's error string without
	// aborting sibling queries.
	Extract func(body []byte) (article string, textFound bool, err error)

	// Process rewrites an extracted fragment for display. Optional.
	Process func(article string) string

	// Wrap decorates a processed fragment before it is appended. Optional.
	Wrap func(article string) []byte

	// Policies inspect each drained result in order; the first non-empty
	// redirect verdict wins.
	Policies []Policy

	// MaxRedirects caps policy-injected requeries per lookup. Redirect
	// chains are expected to strictly narrow the search; the cap only
	// guards against a pathological remote. Default: 3.
	MaxRedirects int

	// MaxWordLen rejects oversized lookups before any network call.
	// Words past this length never match on the remote service anyway.
	// Default: 80 characters.
	MaxWordLen int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 3
	}
	if c.MaxWordLen <= 0 {
		c.MaxWordLen = 80
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ArticleRequest is the per-lookup state machine. It owns a query queue, a
// policy chain, and an output Buffer; a single event-loop goroutine reacts
// to transport completions, so the state needs no internal locking beyond
// the Buffer's.
type ArticleRequest struct {
	cfg   Config
	buf   *Buffer
	queue queryQueue
	log   *slog.Logger

	events      chan Completion
	cancelCh    chan struct{}
	cancelOnce  sync.Once
	outstanding int
	redirects   int
}

// NewArticle starts a lookup for word and its alternate spellings. The
// returned request is safe to observe from other goroutines through its
// Buffer accessors. An oversized word yields an already-finished request
// with an empty buffer and no network activity.
func NewArticle(cfg Config, word string, alternates ...string) *ArticleRequest {
	cfg.defaults()
	r := &ArticleRequest{
		cfg:      cfg,
		buf:      NewBuffer(),
		log:      cfg.Logger.With("word", word),
		events:   make(chan Completion, 4),
		cancelCh: make(chan struct{}),
	}

	if utf8.RuneCountInString(word) > cfg.MaxWordLen {
		r.buf.Finish()
		return r
	}

	r.submitPlanned(word)
	for _, alt := range alternates {
		r.submitPlanned(alt)
	}
	go r.run()
	return r
}

// InstantArticle returns an already-finished request carrying data (which
// may be nil). Used for cache hits and short-circuited lookups.
func InstantArticle(data []byte) *ArticleRequest {
	r := &ArticleRequest{buf: NewBuffer(), cancelCh: make(chan struct{})}
	if len(data) > 0 {
		r.buf.Append(data)
	}
	r.buf.Finish()
	return r
}

// InstantArticleError returns an already-finished request carrying only an
// error string.
func InstantArticleError(msg string) *ArticleRequest {
	r := &ArticleRequest{buf: NewBuffer(), cancelCh: make(chan struct{})}
	r.buf.SetError(msg)
	r.buf.Finish()
	return r
}

// Cancel abandons all still-pending queries and finishes the request
// without appending further data. Idempotent; cancelling a finished
// request is a no-op.
func (r *ArticleRequest) Cancel() {
	r.cancelOnce.Do(func() { close(r.cancelCh) })
}

// Data returns a snapshot of the accumulated output.
func (r *ArticleRequest) Data() []byte { return r.buf.Data() }

// HasAnyData reports whether any output has been appended.
func (r *ArticleRequest) HasAnyData() bool { return r.buf.HasAnyData() }

// Error returns the last recorded per-query error string, if any.
func (r *ArticleRequest) Error() string { return r.buf.Error() }

// IsFinished reports whether the request reached its terminal state.
func (r *ArticleRequest) IsFinished() bool { return r.buf.IsFinished() }

// Updated signals appended data; Done is closed on the terminal state.
func (r *ArticleRequest) Updated() <-chan struct{} { return r.buf.Updated() }

// Done is closed when the request finishes or is cancelled.
func (r *ArticleRequest) Done() <-chan struct{} { return r.buf.Done() }

// submitPlanned submits a caller-initiated query, letting policies rewrite
// the outgoing word and record bookkeeping against the assigned id.
func (r *ArticleRequest) submitPlanned(word string) {
	sent := word
	for _, p := range r.cfg.Policies {
		sent = p.PlanWord(sent)
	}
	id := r.cfg.Transport.Submit(r.cfg.BuildURL(sent), r.events)
	for _, p := range r.cfg.Policies {
		p.Submitted(id, word, sent)
	}
	r.queue.pushBack(id, word)
	r.outstanding++
}

// submitRedirect prepends a policy-injected query, bypassing planning so a
// redirect cannot be rewritten into a loop.
func (r *ArticleRequest) submitRedirect(word string) {
	id := r.cfg.Transport.Submit(r.cfg.BuildURL(word), r.events)
	r.queue.pushFront(id, word)
	r.outstanding++
}

// run is the request's event loop. It exits only after every submitted
// query has delivered its completion, so transport goroutines never block
// on an abandoned sink.
func (r *ArticleRequest) run() {
	cancel := r.cancelCh
	for r.outstanding > 0 {
		select {
		case c := <-r.events:
			r.outstanding--
			if r.buf.IsFinished() {
				continue // cancelled; swallow
			}
			r.handle(c)
		case <-cancel:
			cancel = nil
			for _, id := range r.queue.clear() {
				r.cfg.Transport.Abort(id)
			}
			r.buf.Finish()
		}
	}
	r.buf.Finish()
}

// handle records one completion and processes the ready prefix of the
// queue front-to-back. Processing runs to exhaustion before control
// returns to the event loop.
func (r *ArticleRequest) handle(c Completion) {
	if !r.queue.markCompleted(c.ID, c.Outcome) {
		return // not ours (aborted and already dropped)
	}

	updated := false
	for {
		q := r.queue.drainReady()
		if q == nil {
			break
		}
		if r.process(q) {
			updated = true
		}
	}

	if r.queue.empty() {
		r.buf.Finish()
		return
	}
	if updated {
		r.buf.NotifyUpdated()
	}
}

// process evaluates one drained query: extract, rewrite, consult the
// policy chain, then append. Reports whether data was appended.
func (r *ArticleRequest) process(q *query) bool {
	body := ""
	textFound := false

	switch {
	case q.outcome.Err != nil:
		r.buf.SetError(q.outcome.Err.Error())
	default:
		article, found, err := r.cfg.Extract(q.outcome.Body)
		if err != nil {
			r.buf.SetError(err.Error())
		} else if found {
			body = article
			textFound = true
		}
	}

	if textFound && r.cfg.Process != nil {
		body = r.cfg.Process(body)
	}

	redirect := ""
	for _, p := range r.cfg.Policies {
		if w := p.Inspect(q.id, body, textFound); w != "" && redirect == "" {
			redirect = w
		}
	}
	if redirect != "" {
		if r.redirects >= r.cfg.MaxRedirects {
			r.log.Warn("article: redirect limit reached, dropping",
				"redirect", redirect, "limit", r.cfg.MaxRedirects)
			return false
		}
		r.redirects++
		r.log.Debug("article: redirecting", "from", q.word, "to", redirect)
		r.submitRedirect(redirect)
		return false
	}

	if !textFound {
		return false
	}

	out := []byte(body)
	if r.cfg.Wrap != nil {
		out = r.cfg.Wrap(body)
	}
	r.buf.Append(out)
	return true
}
