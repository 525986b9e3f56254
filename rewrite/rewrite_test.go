package rewrite

import (
	"strings"
	"testing"

	"github.com/hazyhaar/wikidict/audiolink"
)

func testEnv() *Env {
	return &Env{
		Scheme:   "https",
		Root:     "https://en.wikipedia.org",
		SiteURL:  "https://en.wikipedia.org/w",
		DictID:   "d1",
		Audio:    audiolink.New(),
		PlayIcon: DefaultPlayIcon,
	}
}

// WHAT: colons in root-relative link paths are percent-encoded and
// in-page fragments become gdanchor query parameters.
func TestNormalizeRootLinks(t *testing.T) {
	env := testEnv()
	in := `<a href="/wiki/Category:Dogs">c</a> <a href="/wiki/Dog#Some_section">d</a>`
	got := NormalizeRootLinks(env, in)

	if !strings.Contains(got, `href="/wiki/Category%3ADogs"`) {
		t.Fatalf("colon not encoded: %q", got)
	}
	if !strings.Contains(got, `href="/wiki/Dog?gdanchor=Some%5Fsection"`) {
		t.Fatalf("fragment not converted: %q", got)
	}
}

// WHAT: external links with a scheme are left alone.
func TestNormalizeRootLinksSkipsExternal(t *testing.T) {
	env := testEnv()
	in := `<a href="/out?to=https://other.example/a:b#c">x</a>`
	if got := NormalizeRootLinks(env, in); got != in {
		t.Fatalf("external link changed: %q", got)
	}
}

// WHAT: an unterminated link leaves the remainder of the body untouched.
func TestNormalizeRootLinksUnterminated(t *testing.T) {
	env := testEnv()
	in := `<a href="/wiki/Dog`
	if got := NormalizeRootLinks(env, in); got != in {
		t.Fatalf("got %q", got)
	}
}

// WHAT: relative index.php links become absolute against the wiki root.
func TestAbsoluteEndpointLinks(t *testing.T) {
	env := testEnv()
	in := `<a href="/w/index.php?title=X&action=edit">edit</a>`
	got := AbsoluteEndpointLinks(env, in)
	if !strings.Contains(got, `href="https://en.wikipedia.org/w/index.php?title=X`) {
		t.Fatalf("got %q", got)
	}
}

// WHAT: <audio> elements collapse into a play link for their first
// <source> and the reference lands in the registry.
func TestInlineAudioTags(t *testing.T) {
	env := testEnv()
	reg := env.Audio.(*audiolink.Links)
	in := `before <audio controls><source src="https://u.example/dog.ogg" type="audio/ogg"><source src="https://u.example/dog.mp3"></audio> after`
	got := InlineAudioTags(env, in)

	if strings.Contains(got, "<audio") {
		t.Fatalf("audio tag survived: %q", got)
	}
	if !strings.Contains(got, `<a href="https://u.example/dog.ogg"><img src="`+DefaultPlayIcon+`"`) {
		t.Fatalf("no play link: %q", got)
	}
	if reg.First("d1") != "https://u.example/dog.ogg" {
		t.Fatalf("registry = %q", reg.First("d1"))
	}
}

// WHAT: an <audio> element without a <source> is left as is.
func TestInlineAudioTagsNoSource(t *testing.T) {
	env := testEnv()
	in := `<audio controls>fallback</audio>`
	if got := InlineAudioTags(env, in); got != in {
		t.Fatalf("got %q", got)
	}
}

// WHAT: protocol-relative Commons ogg links get the wiki scheme and a
// registered audio reference in front.
func TestCommonsAudioLinks(t *testing.T) {
	env := testEnv()
	reg := env.Audio.(*audiolink.Links)
	in := `<a href="//upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg">play</a>`
	got := CommonsAudioLinks(env, in)

	if !strings.Contains(got, `<a href="https://upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg"`) {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, `class="wd-audiolink"`) {
		t.Fatalf("no registered markup: %q", got)
	}
	if reg.First("d1") != "https://upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg" {
		t.Fatalf("registry = %q", reg.First("d1"))
	}
}

// WHAT: bare //host and root-relative src attributes both become
// absolute.
func TestSchemeQualifyMedia(t *testing.T) {
	env := testEnv()
	in := `<img src="//up.example/a.png"> <img src="/static/b.png">`
	got := SchemeQualifyMedia(env, in)
	if !strings.Contains(got, `src="https://up.example/a.png"`) {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, `src="https://en.wikipedia.org/static/b.png"`) {
		t.Fatalf("got %q", got)
	}
}

// WHAT: the /wiki/ prefix disappears from internal links.
func TestStripArticlePrefix(t *testing.T) {
	env := testEnv()
	got := StripArticlePrefix(env, `<a href="/wiki/Dog">dog</a>`)
	if got != `<a href="Dog">dog</a>` {
		t.Fatalf("got %q", got)
	}
}

// WHAT: scripted audio buttons carrying a Commons ogg URL become plain
// play links.
func TestCommonsAudioButtons(t *testing.T) {
	env := testEnv()
	in := `<button data-src="upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg" class="play"> <img src="p.png"/></button>`
	got := CommonsAudioButtons(env, in)
	if strings.Contains(got, "<button") {
		t.Fatalf("button survived: %q", got)
	}
	if !strings.Contains(got, `<a href="https://upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg"`) {
		t.Fatalf("got %q", got)
	}
}

// WHAT: underscores become spaces only in internal link targets, never
// in absolute URLs or anchored links.
func TestUnderscoresToSpaces(t *testing.T) {
	env := testEnv()
	in := `<a href="Big_Dog">x</a> <a href="https://e.example/a_b">y</a> <a href="Dog?gdanchor=x#a_b">z</a>`
	got := UnderscoresToSpaces(env, in)
	if !strings.Contains(got, `href="Big Dog"`) {
		t.Fatalf("internal link untouched: %q", got)
	}
	if !strings.Contains(got, `https://e.example/a_b`) {
		t.Fatalf("absolute URL changed: %q", got)
	}
}

// WHAT: file description page links are rewritten to the endpoint query
// form.
func TestFileDescriptionLinks(t *testing.T) {
	env := testEnv()
	got := FileDescriptionLinks(env, `<a href="File%3ADog.jpg" class="image">f</a>`)
	if !strings.Contains(got, `<a href="https://en.wikipedia.org/w/index.php?title=File%3ADog.jpg"`) {
		t.Fatalf("got %q", got)
	}
}

// WHAT: lazy image placeholders unwrap to their noscript fallback.
func TestUnwrapLazyImages(t *testing.T) {
	env := testEnv()
	in := `<img class="lzy lzyPlcHld" data-src="x.png"> <noscript> <img src="x.png" alt="x"></noscript>`
	got := UnwrapLazyImages(env, in)
	if got != `<img src="x.png" alt="x">` {
		t.Fatalf("got %q", got)
	}
}

// WHAT: vignette ogg links lose their revision/cache suffixes and gain a
// registered audio reference.
func TestVignetteAudioLinks(t *testing.T) {
	env := testEnv()
	reg := env.Audio.(*audiolink.Links)
	in := `<a href="https://vignette.wikia.nocookie.net/sw/images/a/a1/Word.ogg/revision/latest?cb=20160313"><span>play</span></a>`
	got := VignetteAudioLinks(env, in)

	if !strings.Contains(got, `<a href="https://vignette.wikia.nocookie.net/sw/images/a/a1/Word.ogg"`) {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "/revision/latest") {
		t.Fatalf("revision suffix survived: %q", got)
	}
	if reg.First("d1") != "https://vignette.wikia.nocookie.net/sw/images/a/a1/Word.ogg" {
		t.Fatalf("registry = %q", reg.First("d1"))
	}
}

// WHAT: a plain vignette link sitting after unrelated span markup is still
// registered; only a link preceded by its own reference span is skipped.
func TestVignetteAudioLinksAfterUnrelatedSpan(t *testing.T) {
	env := testEnv()
	reg := env.Audio.(*audiolink.Links)
	in := `<span class="pron">IPA</span><a href="https://vignette.wikia.nocookie.net/sw/images/a/a1/Word.ogg">play</a>`
	got := VignetteAudioLinks(env, in)

	if reg.First("d1") != "https://vignette.wikia.nocookie.net/sw/images/a/a1/Word.ogg" {
		t.Fatalf("registry = %q", reg.First("d1"))
	}
	if !strings.Contains(got, `class="wd-audiolink"`) {
		t.Fatalf("reference span missing: %q", got)
	}
	if again := VignetteAudioLinks(env, got); again != got {
		t.Fatalf("second application changed output: %q", again)
	}
}

// WHAT: absolute heights disappear from scrollbox style lines.
func TestUnclampScrollboxes(t *testing.T) {
	env := testEnv()
	in := `<div class="scrollbox" style="width:100%;height:250px;overflow:auto;">`
	got := UnclampScrollboxes(env, in)
	if strings.Contains(got, "height:250px;") {
		t.Fatalf("height survived: %q", got)
	}
}

// WHAT: min-height is not stripped along with absolute heights.
func TestUnclampScrollboxesKeepsMinHeight(t *testing.T) {
	env := testEnv()
	in := `<div class="scrollbox" style="min-height:50px;">`
	if got := UnclampScrollboxes(env, in); got != in {
		t.Fatalf("min-height changed: %q", got)
	}
}

// WHAT: the era icon block's display:none is removed so the Canon/Legends
// indicator is visible.
func TestShowEraIcons(t *testing.T) {
	env := testEnv()
	in := `<div id="title-eraicons" style="float:right;display:none;">`
	got := ShowEraIcons(env, in)
	if strings.Contains(got, "display:none") {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, `style="float:right;"`) {
		t.Fatalf("rest of style lost: %q", got)
	}
}

// WHAT: every stage applied to its own output changes nothing. Double
// rewriting would corrupt links and duplicate audio markup.
func TestStageIdempotence(t *testing.T) {
	in := `<p><a href="/wiki/Category:Dogs">c</a> <a href="/wiki/Dog#Top_part">d</a>
<a href="/w/index.php?title=X">e</a>
<audio controls><source src="https://u.example/dog.ogg"></audio>
<a href="//upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg">p</a>
<img src="//up.example/a.png"> <img src="/static/b.png">
<button data-src="upload.wikimedia.org/wikipedia/commons/b/b2/Cat.ogg"> <img src="p.png"/></button>
<a href="Big_Dog">f</a> <a href="File%3ADog.jpg">g</a>
<img class="lzy lzyPlcHld" data-src="x.png"> <noscript> <img src="x.png"></noscript>
<a href="https://vignette.wikia.nocookie.net/sw/images/a/a1/Word.ogg/revision/latest?cb=1">v</a>
<div class="scrollbox" style="height:250px;">s</div>
<div id="title-eraicons" style="float:right;display:none;">i</div></p>`

	stages := map[string]Stage{
		"NormalizeRootLinks":    NormalizeRootLinks,
		"AbsoluteEndpointLinks": AbsoluteEndpointLinks,
		"InlineAudioTags":       InlineAudioTags,
		"CommonsAudioLinks":     CommonsAudioLinks,
		"SchemeQualifyMedia":    SchemeQualifyMedia,
		"StripArticlePrefix":    StripArticlePrefix,
		"CommonsAudioButtons":   CommonsAudioButtons,
		"UnderscoresToSpaces":   UnderscoresToSpaces,
		"FileDescriptionLinks":  FileDescriptionLinks,
		"UnwrapLazyImages":      UnwrapLazyImages,
		"VignetteAudioLinks":    VignetteAudioLinks,
		"UnclampScrollboxes":    UnclampScrollboxes,
		"ShowEraIcons":          ShowEraIcons,
	}
	for name, stage := range stages {
		t.Run(name, func(t *testing.T) {
			env := testEnv()
			once := stage(env, in)
			twice := stage(env, once)
			if once != twice {
				t.Fatalf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
			}
		})
	}
}

// WHAT: the full pipeline applied to its own output changes nothing.
func TestPipelineIdempotence(t *testing.T) {
	in := `<a href="/wiki/Category:Dogs">c</a>
<audio controls><source src="https://u.example/dog.ogg"></audio>
<a href="//upload.wikimedia.org/wikipedia/commons/a/a1/Dog.ogg">p</a>
<img src="/static/b.png"> <a href="/wiki/Big_Dog">f</a>`

	env := testEnv()
	p := Wookieepedia()
	once := p.Apply(env, in)
	twice := p.Apply(env, once)
	if once != twice {
		t.Fatalf("pipeline not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

// WHAT: plain text extraction drops markup and script content and keeps
// block structure readable.
func TestExtractText(t *testing.T) {
	in := `<div><h2>Dog</h2><p>The dog is a <a href="Wolf">domesticated wolf</a>.</p><script>x()</script></div>`
	got := ExtractText(in)
	if strings.Contains(got, "x()") {
		t.Fatalf("script leaked: %q", got)
	}
	if !strings.Contains(got, "Dog") || !strings.Contains(got, "domesticated wolf.") {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("no block breaks: %q", got)
	}

	// Inline markup with no surrounding whitespace must not split a token.
	if got := ExtractText(`<p>anti<b>dis</b>establishment</p>`); got != "antidisestablishment" {
		t.Fatalf("inline markup split a token: %q", got)
	}
}
