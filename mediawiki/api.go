package mediawiki

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// apiEnvelope covers both API responses this source issues: action=parse
// for articles and action=query&list=allpages for prefix search.
type apiEnvelope struct {
	XMLName xml.Name `xml:"api"`
	Parse   *struct {
		RevID string  `xml:"revid,attr"`
		Text  *string `xml:"text"`
	} `xml:"parse"`
	Query *struct {
		AllPages struct {
			Pages []struct {
				Title string `xml:"title,attr"`
			} `xml:"p"`
		} `xml:"allpages"`
	} `xml:"query"`
}

// extractArticle pulls the article fragment out of an action=parse
// response. revid "0" means the page does not exist even though the
// envelope parses.
func extractArticle(body []byte) (string, bool, error) {
	var env apiEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return "", false, xmlError(err)
	}
	if env.Parse == nil || env.Parse.RevID == "0" || env.Parse.Text == nil {
		return "", false, nil
	}
	return *env.Parse.Text, true, nil
}

// parseMatches extracts the ordered page titles from an allpages response.
func parseMatches(body []byte) ([]string, error) {
	var env apiEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, xmlError(err)
	}
	if env.Query == nil {
		return nil, nil
	}
	matches := make([]string, 0, len(env.Query.AllPages.Pages))
	for _, p := range env.Query.AllPages.Pages {
		matches = append(matches, p.Title)
	}
	return matches, nil
}

func xmlError(err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("XML parse error: %s at line %d", syn.Msg, syn.Line)
	}
	return fmt.Errorf("XML parse error: %v", err)
}
