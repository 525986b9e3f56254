package mediawiki

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/wikidict/fetch"
	"github.com/hazyhaar/wikidict/request"
)

// stubTransport satisfies request.Transport for construction-only tests.
type stubTransport struct{}

func (stubTransport) Submit(string, chan<- request.Completion) request.QueryID { return "stub" }
func (stubTransport) Abort(request.QueryID)                                    {}

func testTransport(t *testing.T) *fetch.Client {
	t.Helper()
	return fetch.New(fetch.Config{URLValidator: func(string) error { return nil }}, nil)
}

func newDict(t *testing.T, url string, tr request.Transport) *Dictionary {
	t.Helper()
	d, err := New(Config{ID: "d1", Name: "test wiki", URL: url, Transport: tr})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("request did not finish")
	}
}

func articleXML(fragment string) string {
	return `<api><parse revid="42"><text xml:space="preserve">` +
		html.EscapeString(fragment) + `</text></parse></api>`
}

// WHAT: the URL suffix selects the flavor; the Legends marker is chopped
// off the endpoint.
func TestNew_FlavorSelection(t *testing.T) {
	cases := []struct {
		url    string
		flavor Flavor
	}{
		{"https://en.wikipedia.org/w", FlavorPlain},
		{"https://memory-alpha.wikia.com", FlavorFandom},
		{"https://starwars.wikia.com", FlavorWookieepedia},
		{"https://starwars.wikia.com (Legends)", FlavorWookieepediaLegends},
	}
	for _, c := range cases {
		d := newDict(t, c.url, stubTransport{})
		if d.Flavor() != c.flavor {
			t.Errorf("%s: flavor = %d, want %d", c.url, d.Flavor(), c.flavor)
		}
		if strings.Contains(d.endpoint, "(Legends)") {
			t.Errorf("%s: marker left in endpoint %q", c.url, d.endpoint)
		}
	}
}

// WHAT: an invalid endpoint URL is rejected at construction.
func TestNew_InvalidURL(t *testing.T) {
	if _, err := New(Config{URL: "not a url", Transport: stubTransport{}}); err == nil {
		t.Fatal("want error")
	}
	if _, err := New(Config{URL: "https://x.example"}); err == nil {
		t.Fatal("want error for missing transport")
	}
}

// WHAT: a two-letter hostname label determines the language.
func TestLangFromHost(t *testing.T) {
	code, id := langFromHost("en.wikipedia.org")
	if code != "en" || id == 0 {
		t.Fatalf("got %q, %d", code, id)
	}
	if code, id := langFromHost("commons.wikimedia.org"); code != "" || id != 0 {
		t.Fatalf("got %q, %d", code, id)
	}
}

// WHAT: articles from a right-to-left wiki are wrapped with dir="rtl".
func TestWrapRTL(t *testing.T) {
	d := newDict(t, "https://he.wikipedia.org/w", stubTransport{})
	if got := string(d.wrap("x")); got != `<div class="mwiki" dir="rtl">x</div>` {
		t.Fatalf("got %q", got)
	}
	d = newDict(t, "https://en.wikipedia.org/w", stubTransport{})
	if got := string(d.wrap("x")); got != `<div class="mwiki">x</div>` {
		t.Fatalf("got %q", got)
	}
}

// WHAT: a full article lookup rewrites internal links and wraps the
// fragment.
func TestGetArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "parse" {
			t.Errorf("unexpected action in %s", r.URL)
		}
		fmt.Fprint(w, articleXML(`<p>See <a href="/wiki/Dog_Bone">bone</a>.</p>`))
	}))
	defer srv.Close()

	d := newDict(t, srv.URL, testTransport(t))
	r := d.GetArticle("dog")
	waitDone(t, r.Done())

	got := string(r.Data())
	if !strings.HasPrefix(got, `<div class="mwiki">`) || !strings.HasSuffix(got, `</div>`) {
		t.Fatalf("not wrapped: %q", got)
	}
	if !strings.Contains(got, `<a href="Dog Bone">`) {
		t.Fatalf("link not rewritten: %q", got)
	}
}

// WHAT: revid "0" means no such page; the request finishes without data
// and without error.
func TestGetArticleMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api><parse revid="0"></parse></api>`)
	}))
	defer srv.Close()

	d := newDict(t, srv.URL, testTransport(t))
	r := d.GetArticle("nonexistent")
	waitDone(t, r.Done())

	if r.HasAnyData() {
		t.Fatalf("unexpected data: %q", r.Data())
	}
	if r.Error() != "" {
		t.Fatalf("unexpected error: %q", r.Error())
	}
}

// WHAT: a malformed response records an XML parse error with a line
// number and the request still finishes.
func TestGetArticleXMLParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<api><parse></api>")
	}))
	defer srv.Close()

	d := newDict(t, srv.URL, testTransport(t))
	r := d.GetArticle("dog")
	waitDone(t, r.Done())

	if !strings.Contains(r.Error(), "XML parse error") || !strings.Contains(r.Error(), "line") {
		t.Fatalf("error = %q", r.Error())
	}
	if r.HasAnyData() {
		t.Fatal("unexpected data")
	}
}

// WHAT: prefix search returns page titles in response order.
func TestPrefixMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apfrom"); got != "do" {
			t.Errorf("apfrom = %q", got)
		}
		fmt.Fprint(w, `<api><query><allpages>`+
			`<p pageid="1" title="Dog"/><p pageid="2" title="Dogma"/>`+
			`</allpages></query></api>`)
	}))
	defer srv.Close()

	d := newDict(t, srv.URL, testTransport(t))
	s := d.PrefixMatch("do")
	waitDone(t, s.Done())

	got := s.Matches()
	if len(got) != 2 || got[0] != "Dog" || got[1] != "Dogma" {
		t.Fatalf("matches = %v", got)
	}
}

// WHAT: an oversized search word finishes instantly with no network call.
func TestPrefixMatchOversized(t *testing.T) {
	d := newDict(t, "https://en.wikipedia.org/w", stubTransport{})
	s := d.PrefixMatch(strings.Repeat("x", 81))
	if !s.IsFinished() || len(s.Matches()) != 0 {
		t.Fatal("want instantly finished empty search")
	}
}

// WHAT: the Legends flavor first queries word+"/Legends"; when that page
// does not exist, the plain word is fetched and its article is served.
func TestGetArticleLegendsFallback(t *testing.T) {
	var mu sync.Mutex
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()
		if strings.HasSuffix(page, "/Legends") {
			fmt.Fprint(w, `<api><parse revid="0"></parse></api>`)
			return
		}
		fmt.Fprint(w, articleXML(`<p>Canon article.</p>`))
	}))
	defer srv.Close()

	d := newDict(t, srv.URL+"/starwars.wikia.com (Legends)", testTransport(t))
	if d.Flavor() != FlavorWookieepediaLegends {
		t.Fatalf("flavor = %d", d.Flavor())
	}

	r := d.GetArticle("ackbar")
	waitDone(t, r.Done())

	if !strings.Contains(string(r.Data()), "Canon article.") {
		t.Fatalf("data = %q", r.Data())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(pages) != 2 || pages[0] != "ackbar/Legends" || pages[1] != "ackbar" {
		t.Fatalf("pages = %v", pages)
	}
}

// WHAT: the Legends tab marker redirects to the linked article word; the
// pattern works on rewritten bodies where the /wiki/ prefix is gone.
func TestFindLegendsTarget(t *testing.T) {
	body := `<p>x</p><a href="Ackbar/Legends" ` + legendsLinkDistinction + `>Legends</a>`
	if got := findLegendsTarget(body); got != "Ackbar/Legends" {
		t.Fatalf("got %q", got)
	}
	if got := findLegendsTarget("<p>no marker</p>"); got != "" {
		t.Fatalf("got %q", got)
	}
	abs := `<a href="https://x.example" ` + legendsLinkDistinction + `>y</a>`
	if got := findLegendsTarget(abs); got != "" {
		t.Fatalf("absolute link accepted: %q", got)
	}
}
