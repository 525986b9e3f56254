// Package forvo implements a pronunciation source backed by the Forvo
// word-pronunciations API. Responses render as a table of play links with
// speaker, country and vote information.
package forvo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hazyhaar/wikidict/audiolink"
	"github.com/hazyhaar/wikidict/request"
	"github.com/hazyhaar/wikidict/rewrite"
)

// DefaultAPIKey is used when no key is configured. It is a shared
// community key limited to 1000 requests a day and may get banned;
// deployments should register their own.
const DefaultAPIKey = "5efa5d045a16d10ad9c4705bd5d8e56a"

const defaultEndpoint = "https://apifree.forvo.com"

const maxWordLen = 80

// Config describes one Forvo language source.
type Config struct {
	ID   string
	Name string
	// APIKey falls back to DefaultAPIKey when blank.
	APIKey string
	// LanguageCode is the two-letter Forvo language ("en", "de").
	LanguageCode string
	// Endpoint overrides the API host. For tests.
	Endpoint string

	Transport request.Transport
	Audio     audiolink.Registry
	Logger    *slog.Logger
}

// Dictionary is one configured Forvo language source.
type Dictionary struct {
	id        string
	name      string
	apiKey    string
	lang      string
	endpoint  string
	transport request.Transport
	audio     audiolink.Registry
	log       *slog.Logger
}

// New validates the configuration and applies key and endpoint defaults.
func New(cfg Config) (*Dictionary, error) {
	if cfg.Transport == nil {
		return nil, errors.New("forvo: transport is required")
	}
	if cfg.LanguageCode == "" {
		return nil, errors.New("forvo: language code is required")
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		key = DefaultAPIKey
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	audio := cfg.Audio
	if audio == nil {
		audio = audiolink.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dictionary{
		id:        cfg.ID,
		name:      cfg.Name,
		apiKey:    key,
		lang:      cfg.LanguageCode,
		endpoint:  strings.TrimRight(endpoint, "/"),
		transport: cfg.Transport,
		audio:     audio,
		log:       logger.With("dict", cfg.ID),
	}, nil
}

func (d *Dictionary) ID() string   { return d.id }
func (d *Dictionary) Name() string { return d.name }

// GetArticle starts an asynchronous pronunciation lookup. Alternate
// spellings are accepted for interface parity but not queried; the API's
// daily quota makes per-alternate requests too expensive.
func (d *Dictionary) GetArticle(word string, _ ...string) *request.ArticleRequest {
	return request.NewArticle(request.Config{
		Transport: d.transport,
		BuildURL:  d.queryURL,
		Extract: func(body []byte) (string, bool, error) {
			return d.extract(word, body)
		},
		MaxWordLen: maxWordLen,
		Logger:     d.log,
	}, word)
}

// PrefixMatch is unsupported; the API offers no prefix listing.
func (d *Dictionary) PrefixMatch(string) *request.SearchRequest {
	return request.InstantSearch()
}

func (d *Dictionary) queryURL(word string) string {
	return d.endpoint + "/key/" + d.apiKey +
		"/format/xml/action/word-pronunciations/word/" + url.PathEscape(word) +
		"/language/" + d.lang
}

type pronunciation struct {
	PathMP3          string `xml:"pathmp3"`
	Sex              string `xml:"sex"`
	Username         string `xml:"username"`
	Country          string `xml:"country"`
	NumVotes         int    `xml:"num_votes"`
	NumPositiveVotes int    `xml:"num_positive_votes"`
	AddTime          string `xml:"addtime"`
}

// extract parses a word-pronunciations response. The root element is
// either <items> or <errors>.
func (d *Dictionary) extract(word string, body []byte) (string, bool, error) {
	var env struct {
		XMLName xml.Name
		Items   []pronunciation `xml:"item"`
		Errors  []string        `xml:"error"`
	}
	if err := xml.Unmarshal(body, &env); err != nil {
		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			return "", false, fmt.Errorf("XML parse error: %s at line %d", syn.Msg, syn.Line)
		}
		return "", false, fmt.Errorf("XML parse error: %v", err)
	}
	if env.XMLName.Local == "errors" && len(env.Errors) > 0 {
		return "", false, errors.New(env.Errors[0])
	}
	if len(env.Items) == 0 {
		return "", false, nil
	}
	return d.render(word, env.Items), true, nil
}

func (d *Dictionary) render(word string, items []pronunciation) string {
	var b strings.Builder
	b.WriteString("<div class='forvo_headword'>")
	b.WriteString(html.EscapeString(word))
	b.WriteString("</div>")
	b.WriteString(`<table class="forvo_play">`)

	for _, it := range items {
		if it.PathMP3 == "" {
			continue
		}
		b.WriteString("<tr>")

		ref := `"` + it.PathMP3 + `"`
		b.WriteString(d.audio.Register(ref, d.id))

		b.WriteString("<td><a href=" + ref + ` title="` +
			html.EscapeString("Added "+it.AddTime) +
			`"><img src="` + rewrite.DefaultPlayIcon + `" border="0" alt="Play"/></a></td>`)

		b.WriteString("<td>by <a class='forvo_user' href='http://www.forvo.com/user/" +
			url.PathEscape(it.Username) + "/'>" +
			html.EscapeString(it.Username) + "</a> <span class='forvo_location'>(")
		if strings.EqualFold(it.Sex, "f") {
			b.WriteString("Female")
		} else {
			b.WriteString("Male")
		}
		b.WriteString(" from ")
		if iso := countryISO2(it.Country); iso != "" {
			b.WriteString("<img src='/flags/" + iso + ".png'/> ")
		}
		b.WriteString(html.EscapeString(it.Country))
		b.WriteString(")</span>")

		positive := it.NumPositiveVotes
		negative := it.NumVotes - it.NumPositiveVotes
		if positive > 0 || negative > 0 {
			b.WriteString(" ")
			if positive > 0 {
				fmt.Fprintf(&b, "<span class='forvo_positive_votes'>+%d</span>", positive)
			}
			if negative > 0 {
				if positive > 0 {
					b.WriteString(" ")
				}
				fmt.Fprintf(&b, "<span class='forvo_negative_votes'>-%d</span>", negative)
			}
		}
		b.WriteString("</td></tr>")
	}

	b.WriteString("</table>")
	return b.String()
}
