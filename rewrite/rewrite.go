// Package rewrite transforms remote article HTML fragments into
// self-contained markup renderable outside their origin page.
//
// Stages are pure string transformations applied in a fixed order; later
// stages assume earlier ones already normalized the text. Every stage is
// idempotent: re-applying it to its own output changes nothing.
package rewrite

import (
	"strings"

	"github.com/hazyhaar/wikidict/audiolink"
)

// DefaultPlayIcon is the icon used for generated audio play links.
const DefaultPlayIcon = "/icons/playsound.png"

// Env carries the per-dictionary context the stages rewrite against.
type Env struct {
	// Scheme of the wiki endpoint ("https").
	Scheme string
	// Root is scheme://host with no trailing slash.
	Root string
	// SiteURL is the configured endpoint base (root plus script path),
	// no trailing slash.
	SiteURL string
	// DictID identifies the owning dictionary in audio link markup.
	DictID string
	// Audio receives discovered audio references.
	Audio audiolink.Registry
	// PlayIcon is the image URL for generated play links.
	PlayIcon string
}

// Stage is one rewriting pass over an article body.
type Stage func(env *Env, body string) string

// Pipeline applies stages in order.
type Pipeline []Stage

// Apply runs body through every stage.
func (p Pipeline) Apply(env *Env, body string) string {
	for _, s := range p {
		body = s(env, body)
	}
	return body
}

// Core returns the standard MediaWiki pipeline. Order matters: audio
// extraction must see the original protocol-relative URLs, prefix
// stripping must run before underscore normalization, and underscore
// normalization must never touch already-absolutized links.
func Core() Pipeline {
	return Pipeline{
		NormalizeRootLinks,
		AbsoluteEndpointLinks,
		InlineAudioTags,
		CommonsAudioLinks,
		SchemeQualifyMedia,
		StripArticlePrefix,
		CommonsAudioButtons,
		UnderscoresToSpaces,
		FileDescriptionLinks,
	}
}

// Fandom returns the pipeline for Fandom-hosted wikis: site-specific
// cleanups first, then the standard stages.
func Fandom() Pipeline {
	return append(Pipeline{
		UnwrapLazyImages,
		VignetteAudioLinks,
		UnclampScrollboxes,
	}, Core()...)
}

// Wookieepedia returns the Fandom pipeline plus the era icon fix.
func Wookieepedia() Pipeline {
	return append(Pipeline{
		UnwrapLazyImages,
		VignetteAudioLinks,
		UnclampScrollboxes,
		ShowEraIcons,
	}, Core()...)
}

func playAnchor(env *Env, ref, align string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(ref)
	b.WriteString(`"><img src="`)
	b.WriteString(env.PlayIcon)
	b.WriteString(`" border="0"`)
	if align != "" {
		b.WriteString(` align="`)
		b.WriteString(align)
		b.WriteString(`"`)
	}
	b.WriteString(` alt="Play"/></a>`)
	return b.String()
}
