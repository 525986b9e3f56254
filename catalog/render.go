package catalog

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/hazyhaar/wikidict/rewrite"
)

// ToMarkdown converts a rewritten article to Markdown.
func ToMarkdown(body []byte) (string, error) {
	return htmltomarkdown.ConvertString(string(body))
}

// ToText renders a rewritten article as plain text.
func ToText(body []byte) string {
	return rewrite.ExtractText(string(body))
}
