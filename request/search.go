package request

import (
	"log/slog"
	"sync"
	"time"
)

// SearchConfig wires a SearchRequest to its source-specific collaborators.
type SearchConfig struct {
	Transport Transport

	// BuildURL turns the prefix word into the remote query URL.
	BuildURL func(word string) string

	// ParseMatches extracts the ordered match list from a response body.
	ParseMatches func(body []byte) ([]string, error)

	// Grace is the minimum lifetime before a cancelled request may tear
	// down. Rapid typing cancels and recreates these requests on every
	// keystroke; the grace window amortizes the transport churn.
	// Default: 200ms.
	Grace time.Duration

	Logger *slog.Logger

	// startTimer is swapped in tests to drive maturity with virtual time.
	startTimer func(d time.Duration, f func()) *time.Timer
}

func (c *SearchConfig) defaults() {
	if c.Grace <= 0 {
		c.Grace = 200 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.startTimer == nil {
		c.startTimer = time.AfterFunc
	}
}

// SearchRequest is the debounced prefix-lookup state machine. Unlike
// ArticleRequest it has no queue: one query, one completion, plus a
// maturity timer that gates teardown.
type SearchRequest struct {
	mu         sync.Mutex
	matches    []string
	errText    string
	finished   bool
	matured    bool
	cancelling bool

	id        QueryID
	transport Transport
	done      chan struct{}
	log       *slog.Logger
}

// NewSearch submits one prefix query and starts the maturity timer.
func NewSearch(cfg SearchConfig, word string) *SearchRequest {
	cfg.defaults()
	s := &SearchRequest{
		transport: cfg.Transport,
		done:      make(chan struct{}),
		log:       cfg.Logger.With("word", word),
	}

	// Buffered so the transport's single send never blocks, even when the
	// request is torn down before the completion arrives.
	events := make(chan Completion, 1)
	s.id = cfg.Transport.Submit(cfg.BuildURL(word), events)

	go func() {
		c := <-events
		s.completed(c, cfg.ParseMatches)
	}()
	cfg.startTimer(cfg.Grace, s.matureNow)
	return s
}

// InstantSearch returns an already-finished request with the given matches
// and no network activity. Used to short-circuit oversized prefixes and to
// serve precomputed results.
func InstantSearch(matches ...string) *SearchRequest {
	s := &SearchRequest{done: make(chan struct{}), finished: true, matches: matches}
	close(s.done)
	return s
}

// Cancel tears the request down. Before maturity the teardown (including
// the transport abort) is deferred to the maturity callback; after, it is
// immediate. Idempotent, and silent in all cases.
func (s *SearchRequest) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.cancelling = true
	if s.matured {
		s.teardownLocked()
	}
}

// Matches returns a snapshot of the ordered match list.
func (s *SearchRequest) Matches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.matches))
	copy(out, s.matches)
	return out
}

// Error returns the recorded error string, or "" if none.
func (s *SearchRequest) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// IsFinished reports whether the request reached its terminal state.
func (s *SearchRequest) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Done is closed when the request finishes or is torn down.
func (s *SearchRequest) Done() <-chan struct{} { return s.done }

// matureNow marks the request old enough to tear down, and completes a
// previously requested cancellation.
func (s *SearchRequest) matureNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matured = true
	if s.cancelling && !s.finished {
		s.teardownLocked()
	}
}

// completed handles the single transport completion.
func (s *SearchRequest) completed(c Completion, parse func([]byte) ([]string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelling || s.finished {
		return // cancellation path owns teardown
	}

	if c.Outcome.Err != nil {
		s.errText = c.Outcome.Err.Error()
	} else if matches, err := parse(c.Outcome.Body); err != nil {
		s.errText = err.Error()
		s.log.Debug("search: parse failed", "error", err)
	} else {
		s.matches = matches
	}
	s.finishLocked()
}

func (s *SearchRequest) teardownLocked() {
	if s.id != "" {
		s.transport.Abort(s.id)
	}
	s.finishLocked()
}

func (s *SearchRequest) finishLocked() {
	if s.finished {
		return
	}
	s.finished = true
	close(s.done)
}
