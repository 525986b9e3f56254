package rewrite

import (
	"regexp"
	"strings"
)

var (
	rootLinkRe      = regexp.MustCompile(`<a\s+href="/`)
	endpointRe      = regexp.MustCompile(`<a\shref="(/(?:\w*/)*index\.php\?)`)
	audioTagRe      = regexp.MustCompile(`(?is)<audio\s.+?</audio>`)
	audioSrcRe      = regexp.MustCompile(`(?i)<source\s+src="([^"]+)`)
	commonsLinkRe   = regexp.MustCompile(`<a\s+href="(//upload\.wikimedia\.org/wikipedia/commons/[^"'&]*\.ogg)`)
	articlePrefixRe = regexp.MustCompile(`<a\shref="/wiki/`)
	audioButtonRe   = regexp.MustCompile(`<button\s+[^>]*(upload\.wikimedia\.org/wikipedia/commons/[^"'&]*\.ogg)[^>]*>\s*<[^<]*</button>`)
	innerLinkRe     = regexp.MustCompile(`<a\s+href="[^/:">#]+`)
	fileLinkRe      = regexp.MustCompile(`(?i)<a\s+href="([^:/"]*file%3A[^/"]+")`)
)

// NormalizeRootLinks rewrites root-relative links: percent-encodes colons
// in the path and converts an in-page "#fragment" suffix into a
// "?gdanchor=" query parameter, with underscores in the fragment encoded.
// A plain "#fragment" would resolve against the host page, not the
// rewritten article link.
func NormalizeRootLinks(_ *Env, body string) string {
	var b strings.Builder
	pos := 0
	for {
		loc := rootLinkRe.FindStringIndex(body[pos:])
		if loc == nil {
			break
		}
		b.WriteString(body[pos : pos+loc[1]])
		pos += loc[1]
		q := strings.IndexByte(body[pos:], '"')
		if q < 0 {
			// Unterminated link, leave the rest untouched.
			break
		}
		b.WriteString(fixRootURL(body[pos : pos+q]))
		pos += q
	}
	if pos == 0 {
		return body
	}
	b.WriteString(body[pos:])
	return b.String()
}

// fixRootURL receives the link target with its leading slash already
// consumed by the caller.
func fixRootURL(u string) string {
	if strings.Contains(u, "://") {
		return u // external link
	}
	u = strings.ReplaceAll(u, ":", "%3A")
	if idx := strings.IndexByte(u, '#'); idx >= 1 {
		anchor := strings.ReplaceAll(u[idx+1:], "_", "%5F")
		u = u[:idx] + "?gdanchor=" + anchor
	}
	return u
}

// AbsoluteEndpointLinks absolutizes links to the wiki's dynamic query
// endpoint (index.php); relative forms break once the article is hosted
// outside its origin.
func AbsoluteEndpointLinks(env *Env, body string) string {
	return endpointRe.ReplaceAllStringFunc(body, func(m string) string {
		path := endpointRe.FindStringSubmatch(m)[1]
		return `<a href="` + env.Root + path
	})
}

// InlineAudioTags replaces embedded <audio> elements with a play link to
// the first <source> URL and registers the reference.
func InlineAudioTags(env *Env, body string) string {
	return audioTagRe.ReplaceAllStringFunc(body, func(tag string) string {
		m := audioSrcRe.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		ref := m[1]
		return env.Audio.Register(`"`+ref+`"`, env.DictID) + playAnchor(env, ref, "absmiddle")
	})
}

// CommonsAudioLinks scheme-qualifies protocol-relative Wikimedia Commons
// .ogg links and registers each reference ahead of the link.
func CommonsAudioLinks(env *Env, body string) string {
	return commonsLinkRe.ReplaceAllStringFunc(body, func(m string) string {
		ref := env.Scheme + ":" + commonsLinkRe.FindStringSubmatch(m)[1]
		return env.Audio.Register(`"`+ref+`"`, env.DictID) + `<a href="` + ref
	})
}

// SchemeQualifyMedia qualifies bare "//host/path" media URLs with the
// wiki's scheme and absolutizes root-relative src attributes.
func SchemeQualifyMedia(env *Env, body string) string {
	body = strings.ReplaceAll(body, ` src="//`, ` src="`+env.Scheme+`://`)
	return strings.ReplaceAll(body, `src="/`, `src="`+env.Root+`/`)
}

// StripArticlePrefix removes the "/wiki/" prefix from internal links so
// they read as short relative names.
func StripArticlePrefix(_ *Env, body string) string {
	return articlePrefixRe.ReplaceAllLiteralString(body, `<a href="`)
}

// CommonsAudioButtons rewrites scripted audio <button> controls that carry
// a Commons .ogg URL into plain play links.
func CommonsAudioButtons(env *Env, body string) string {
	return audioButtonRe.ReplaceAllStringFunc(body, func(m string) string {
		ref := env.Scheme + "://" + audioButtonRe.FindStringSubmatch(m)[1]
		return env.Audio.Register(`"`+ref+`"`, env.DictID) + playAnchor(env, ref, "")
	})
}

// UnderscoresToSpaces restores spaces in internal link targets; the wiki
// encodes spaces as underscores in its internal link syntax. The match
// excludes absolute links, anchors and already-qualified URLs.
func UnderscoresToSpaces(_ *Env, body string) string {
	return innerLinkRe.ReplaceAllStringFunc(body, func(m string) string {
		return strings.ReplaceAll(m, "_", " ")
	})
}

// FileDescriptionLinks rewrites links to media description pages into the
// endpoint query form.
func FileDescriptionLinks(env *Env, body string) string {
	return fileLinkRe.ReplaceAllStringFunc(body, func(m string) string {
		target := fileLinkRe.FindStringSubmatch(m)[1]
		return `<a href="` + env.SiteURL + `/index.php?title=` + target
	})
}
