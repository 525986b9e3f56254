// Package mediawiki implements an article and prefix-search source backed
// by a MediaWiki API endpoint.
//
// Beyond stock wikis, three Fandom-hosted variants are supported: plain
// Fandom (lazy images, vignette audio, scrollboxes), Wookieepedia (era
// icons) and Wookieepedia Legends (speculative "/Legends" lookups with a
// redirect back to the Canon article when no Legends version exists).
package mediawiki

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/wikidict/audiolink"
	"github.com/hazyhaar/wikidict/request"
	"github.com/hazyhaar/wikidict/rewrite"
)

// Flavor selects per-site rewriting and redirect behavior.
type Flavor int

const (
	FlavorPlain Flavor = iota
	FlavorFandom
	FlavorWookieepedia
	FlavorWookieepediaLegends
)

// legendsConfigSuffix on a configured URL selects the Legends flavor; it
// is a configuration marker, not part of the endpoint.
const legendsConfigSuffix = " (Legends)"

// maxWordLen bounds lookup words. Longer queries are fruitless against
// the remote service.
const maxWordLen = 80

// Config describes one configured wiki.
type Config struct {
	ID   string
	Name string
	// URL is the wiki endpoint base, e.g. "https://en.wikipedia.org/w".
	URL string

	Transport request.Transport
	// Audio receives pronunciation links found while rewriting. A private
	// registry is created when nil.
	Audio  audiolink.Registry
	Logger *slog.Logger
}

// Dictionary is one configured MediaWiki source.
type Dictionary struct {
	id       string
	name     string
	endpoint string
	flavor   Flavor
	langCode string
	langID   uint32
	rtl      bool

	env       *rewrite.Env
	pipeline  rewrite.Pipeline
	transport request.Transport
	log       *slog.Logger
}

// New validates the configured URL, derives the language from the
// hostname, and selects the flavor from the URL suffix.
func New(cfg Config) (*Dictionary, error) {
	if cfg.Transport == nil {
		return nil, errors.New("mediawiki: transport is required")
	}

	endpoint := cfg.URL
	flavor := FlavorPlain
	switch {
	case strings.HasSuffix(endpoint, "/starwars.wikia.com"+legendsConfigSuffix):
		endpoint = strings.TrimSuffix(endpoint, legendsConfigSuffix)
		flavor = FlavorWookieepediaLegends
	case strings.HasSuffix(endpoint, "/starwars.wikia.com"):
		flavor = FlavorWookieepedia
	case strings.HasSuffix(endpoint, ".wikia.com"):
		flavor = FlavorFandom
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("mediawiki: invalid endpoint URL %q", cfg.URL)
	}

	audio := cfg.Audio
	if audio == nil {
		audio = audiolink.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	code, id := langFromHost(u.Hostname())
	d := &Dictionary{
		id:        cfg.ID,
		name:      cfg.Name,
		endpoint:  strings.TrimRight(endpoint, "/"),
		flavor:    flavor,
		langCode:  code,
		langID:    id,
		rtl:       rtlLanguages[code],
		transport: cfg.Transport,
		log:       logger.With("dict", cfg.ID),
		env: &rewrite.Env{
			Scheme:   u.Scheme,
			Root:     u.Scheme + "://" + u.Host,
			SiteURL:  strings.TrimRight(endpoint, "/"),
			DictID:   cfg.ID,
			Audio:    audio,
			PlayIcon: rewrite.DefaultPlayIcon,
		},
	}

	switch flavor {
	case FlavorFandom:
		d.pipeline = rewrite.Fandom()
	case FlavorWookieepedia, FlavorWookieepediaLegends:
		d.pipeline = rewrite.Wookieepedia()
	default:
		d.pipeline = rewrite.Core()
	}
	return d, nil
}

func (d *Dictionary) ID() string     { return d.id }
func (d *Dictionary) Name() string   { return d.name }
func (d *Dictionary) Flavor() Flavor { return d.flavor }

// Lang returns the packed language identifier derived from the hostname,
// or 0 when the hostname carries no two-letter code.
func (d *Dictionary) Lang() uint32 { return d.langID }

// GetArticle starts an asynchronous article lookup for word and its
// alternate spellings.
func (d *Dictionary) GetArticle(word string, alternates ...string) *request.ArticleRequest {
	return request.NewArticle(request.Config{
		Transport: d.transport,
		BuildURL:  d.articleURL,
		Extract:   extractArticle,
		Process: func(article string) string {
			return d.pipeline.Apply(d.env, article)
		},
		Wrap:       d.wrap,
		Policies:   d.policies(),
		MaxWordLen: maxWordLen,
		Logger:     d.log,
	}, word, alternates...)
}

// PrefixMatch starts a debounced prefix search for word.
func (d *Dictionary) PrefixMatch(word string) *request.SearchRequest {
	if utf8.RuneCountInString(word) > maxWordLen {
		return request.InstantSearch()
	}
	return request.NewSearch(request.SearchConfig{
		Transport:    d.transport,
		BuildURL:     d.searchURL,
		ParseMatches: parseMatches,
		Logger:       d.log,
	}, word)
}

func (d *Dictionary) articleURL(word string) string {
	return d.endpoint + "/api.php?action=parse&prop=text|revid&format=xml&redirects&page=" +
		url.QueryEscape(word)
}

func (d *Dictionary) searchURL(word string) string {
	return d.endpoint + "/api.php?action=query&list=allpages&aplimit=40&format=xml&apfrom=" +
		url.QueryEscape(word)
}

func (d *Dictionary) wrap(article string) []byte {
	open := `<div class="mwiki">`
	if d.rtl {
		open = `<div class="mwiki" dir="rtl">`
	}
	return []byte(open + article + `</div>`)
}

// policies builds a fresh chain per lookup; policies carry per-request
// bookkeeping.
func (d *Dictionary) policies() []request.Policy {
	if d.flavor != FlavorWookieepediaLegends {
		return nil
	}
	return []request.Policy{
		&request.LinkRedirect{Find: findLegendsTarget},
		&request.SuffixRetry{Suffix: "/Legends"},
	}
}

// legendsLinkDistinction marks the inactive Legends tab in a Canon
// article. Finding it means a Legends version of the subject exists and
// the current body should be discarded in its favour.
const legendsLinkDistinction = `title="Click here for Wookieepedia&#39;s article on the Legends version of this subject."`

// The pattern operates on rewritten bodies: internal links have lost the
// "/wiki/" prefix and underscores are already spaces. A colon would mean
// an absolute URL, which is never an internal article link.
var legendsLinkRe = regexp.MustCompile(`^<a href="([^":]+)"`)

func findLegendsTarget(body string) string {
	pos := strings.Index(body, legendsLinkDistinction)
	if pos < 0 {
		return ""
	}
	linkPos := strings.LastIndexAny(body[:pos], "<>")
	if linkPos < 0 {
		return ""
	}
	m := legendsLinkRe.FindStringSubmatch(body[linkPos:pos])
	if m == nil {
		return ""
	}
	return m[1]
}
