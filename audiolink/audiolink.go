// Package audiolink collects audio references discovered while rewriting
// article bodies and renders the hidden markup that carries them.
//
// Rewriting happens concurrently across queries of one request, so the
// registry is safe for concurrent use. Only the first reference per owner
// is retained; MediaWiki articles commonly repeat the same pronunciation
// file several times.
package audiolink

import (
	"fmt"
	"html"
	"sync"
)

// Registry records audio references keyed by the owning dictionary.
type Registry interface {
	// Register records rawRef for ownerID and returns the markup to embed
	// in the article body. rawRef is a quoted or unquoted URL as found in
	// the source HTML.
	Register(rawRef, ownerID string) string
}

// Links is the standard Registry. The zero value is not usable; call New.
type Links struct {
	mu    sync.Mutex
	first map[string]string
}

// New creates an empty Links registry.
func New() *Links {
	return &Links{first: make(map[string]string)}
}

// Register implements Registry. The returned span is invisible in rendered
// HTML; consumers scan for it to build pronunciation controls.
func (l *Links) Register(rawRef, ownerID string) string {
	ref := unquote(rawRef)

	l.mu.Lock()
	if _, ok := l.first[ownerID]; !ok {
		l.first[ownerID] = ref
	}
	l.mu.Unlock()

	return fmt.Sprintf(`<span class="wd-audiolink" data-dict=%q data-url=%q></span>`,
		ownerID, html.EscapeString(ref))
}

// First returns the first reference registered for ownerID, or "" if none.
func (l *Links) First(ownerID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.first[ownerID]
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
