package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractText renders an article HTML fragment as plain text. Script,
// style and noscript subtrees are dropped; block elements introduce line
// breaks. Text nodes join with a single space only where the source had
// whitespace between them, so inline markup never splits a token.
func ExtractText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	pending := false // whitespace seen since the last emitted text
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text == "" {
				pending = pending || n.Data != ""
			} else {
				if first, _ := utf8.DecodeRuneInString(n.Data); unicode.IsSpace(first) {
					pending = true
				}
				if pending && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
				last, _ := utf8.DecodeLastRuneInString(n.Data)
				pending = unicode.IsSpace(last)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) && sb.Len() > 0 {
			if !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	f(doc)
	return strings.TrimRight(sb.String(), "\n")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Tr, atom.Table,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Blockquote, atom.Pre, atom.Section:
		return true
	}
	return false
}
