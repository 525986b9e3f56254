// Package catalog aggregates configured dictionary sources behind one
// lookup service and exposes it over HTTP and MCP.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/wikidict/audiolink"
	"github.com/hazyhaar/wikidict/fetch"
	"github.com/hazyhaar/wikidict/forvo"
	"github.com/hazyhaar/wikidict/mediawiki"
	"github.com/hazyhaar/wikidict/request"
	"github.com/hazyhaar/wikidict/store"
)

// Source is one configured dictionary.
type Source interface {
	ID() string
	Name() string
	GetArticle(word string, alternates ...string) *request.ArticleRequest
	PrefixMatch(word string) *request.SearchRequest
}

// ErrUnknownSource is wrapped into lookups against unconfigured ids.
var ErrUnknownSource = fmt.Errorf("unknown dictionary")

// ErrNoArticle is returned when a lookup finishes without usable output.
var ErrNoArticle = fmt.Errorf("no article found")

// Service owns the sources, the optional article cache, and the optional
// output sanitizer.
type Service struct {
	sources  []Source
	byID     map[string]Source
	cache    *store.Store
	sanitize *bluemonday.Policy
	log      *slog.Logger
}

// NewService creates an empty service; register sources with Add.
// cache may be nil (no caching); sanitize controls output scrubbing.
func NewService(cache *store.Store, sanitize bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		byID:  make(map[string]Source),
		cache: cache,
		log:   logger,
	}
	if sanitize {
		s.sanitize = articlePolicy()
	}
	return s
}

// articlePolicy permits the markup article rewriting produces: wrapper
// divs with dir, play-link anchors and images, and the audio reference
// spans with their data attributes.
func articlePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "dir").Globally()
	p.AllowAttrs("data-dict", "data-url").OnElements("span")
	p.AllowAttrs("border", "align", "alt").OnElements("img")
	return p
}

// Add registers a source. Later registrations with a duplicate id are
// rejected.
func (s *Service) Add(src Source) error {
	if _, dup := s.byID[src.ID()]; dup {
		return fmt.Errorf("duplicate dictionary id %q", src.ID())
	}
	s.byID[src.ID()] = src
	s.sources = append(s.sources, src)
	return nil
}

// Sources returns the registered sources in registration order.
func (s *Service) Sources() []Source { return s.sources }

// FromConfig builds a ready service: HTTP transport, shared audio link
// registry, article cache, and one source per configured wiki and Forvo
// language.
func FromConfig(cfg *Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var cache *store.Store
	if cfg.Cache.Path != "" {
		var err error
		cache, err = store.Open(cfg.Cache.Path, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, err
		}
	}

	s := NewService(cache, cfg.Sanitize, logger)
	transport := fetch.New(fetch.Config{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
	}, logger)
	audio := audiolink.New()

	for _, w := range cfg.Wikis {
		if !w.enabled() {
			continue
		}
		d, err := mediawiki.New(mediawiki.Config{
			ID:        w.ID,
			Name:      w.Name,
			URL:       w.URL,
			Transport: transport,
			Audio:     audio,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}

	for _, code := range cfg.Forvo.Languages {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		display := strings.ToUpper(code[:1]) + strings.ToLower(code[1:])
		d, err := forvo.New(forvo.Config{
			ID:           "forvo_" + strings.ToLower(code),
			Name:         "Forvo (" + display + ")",
			APIKey:       cfg.Forvo.APIKey,
			LanguageCode: code,
			Transport:    transport,
			Audio:        audio,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Close releases the cache.
func (s *Service) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// Lookup fetches the article for word from the named source, serving from
// the cache when fresh. Cancelling ctx cancels the in-flight request.
func (s *Service) Lookup(ctx context.Context, dictID, word string, alternates ...string) ([]byte, error) {
	src, ok := s.byID[dictID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, dictID)
	}

	if s.cache != nil && len(alternates) == 0 {
		if body, hit, err := s.cache.Get(ctx, dictID, word); err != nil {
			s.log.Warn("catalog: cache read failed", "error", err)
		} else if hit {
			return body, nil
		}
	}

	r := src.GetArticle(word, alternates...)
	select {
	case <-r.Done():
	case <-ctx.Done():
		r.Cancel()
		return nil, ctx.Err()
	}

	if !r.HasAnyData() {
		if msg := r.Error(); msg != "" {
			return nil, fmt.Errorf("%s: %s", dictID, msg)
		}
		return nil, fmt.Errorf("%w: %s/%q", ErrNoArticle, dictID, word)
	}

	body := r.Data()
	if s.sanitize != nil {
		body = s.sanitize.SanitizeBytes(body)
	}
	if s.cache != nil && len(alternates) == 0 {
		if err := s.cache.Put(ctx, dictID, word, body); err != nil {
			s.log.Warn("catalog: cache write failed", "error", err)
		}
	}
	return body, nil
}

// Search runs a prefix search against the named source.
func (s *Service) Search(ctx context.Context, dictID, word string) ([]string, error) {
	src, ok := s.byID[dictID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, dictID)
	}

	r := src.PrefixMatch(word)
	select {
	case <-r.Done():
	case <-ctx.Done():
		r.Cancel()
		return nil, ctx.Err()
	}

	if msg := r.Error(); msg != "" && len(r.Matches()) == 0 {
		return nil, fmt.Errorf("%s: %s", dictID, msg)
	}
	return r.Matches(), nil
}
