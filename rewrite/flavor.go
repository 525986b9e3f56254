package rewrite

import (
	"html"
	"regexp"
	"strings"
)

var (
	lazyImageRe = regexp.MustCompile(`(?s)<img\s[^>]+lzy lzyPlcHld[^>]+>\s*<noscript>\s*(<img\s[^<]+)</noscript>`)
	vignetteRe  = regexp.MustCompile(`<a href=("https://vignette\.wikia\.nocookie\.net/[^"]+\.ogg)(/revision/latest)?(\?cb=\d+)?"`)
	scrollboxRe = regexp.MustCompile(`(class="scrollbox"[^\n]*[^-])height:\d+px;`)
	eraIconsRe  = regexp.MustCompile(`(id="title-eraicons" style="[^"]*)display:none;?`)
)

// UnwrapLazyImages replaces lazy-loading image placeholders with the plain
// <img> alternative from their <noscript> fallback. Lazy loading needs the
// host page's scripts, which rewritten articles do not carry.
func UnwrapLazyImages(_ *Env, body string) string {
	return lazyImageRe.ReplaceAllString(body, "${1}")
}

// VignetteAudioLinks registers Fandom-hosted .ogg pronunciation links and
// strips their cache-busting URL suffixes.
func VignetteAudioLinks(env *Env, body string) string {
	matches := vignetteRe.FindAllStringSubmatchIndex(body, -1)
	if matches == nil {
		return body
	}
	var b strings.Builder
	pos := 0
	for _, m := range matches {
		head := body[pos:m[0]]
		b.WriteString(head)
		ref := body[m[2]:m[3]] // includes the opening quote
		// A bare link directly after its own registered markup is already
		// in final form; registering again would duplicate the markup.
		bare := m[4] < 0 && m[6] < 0
		if !(bare && hasRegisteredMarkup(head, ref[1:])) {
			b.WriteString(env.Audio.Register(ref+`"`, env.DictID))
		}
		b.WriteString(`<a href=` + ref + `"`)
		pos = m[1]
	}
	b.WriteString(body[pos:])
	return b.String()
}

// hasRegisteredMarkup reports whether head ends in an audio reference span
// carrying url. Matching on the span class and the exact URL keeps the
// check from firing on unrelated spans that happen to precede a link.
func hasRegisteredMarkup(head, url string) bool {
	if !strings.HasSuffix(head, "</span>") {
		return false
	}
	i := strings.LastIndex(head, "<span ")
	if i < 0 {
		return false
	}
	tail := head[i:]
	return strings.Contains(tail, `class="wd-audiolink"`) &&
		strings.Contains(tail, html.EscapeString(url))
}

// UnclampScrollboxes removes absolute heights from scrollbox styles so
// scrollable container contents stay fully visible.
func UnclampScrollboxes(_ *Env, body string) string {
	return scrollboxRe.ReplaceAllString(body, "${1}")
}

// ShowEraIcons unhides the era indicator block at the top of Wookieepedia
// articles. Without it there is no visible distinction between the Canon
// and the Legends version of a subject.
func ShowEraIcons(_ *Env, body string) string {
	return eraIconsRe.ReplaceAllString(body, "${1}")
}
