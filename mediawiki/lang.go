package mediawiki

import "strings"

// langFromHost derives the wiki language from the first hostname label
// when it is a two-letter code ("en.wikipedia.org"). Returns the
// lowercase code and its packed numeric form, or ("", 0).
func langFromHost(host string) (string, uint32) {
	label, _, ok := strings.Cut(host, ".")
	if !ok || len(label) != 2 {
		return "", 0
	}
	code := strings.ToLower(label)
	return code, uint32(code[0])<<8 | uint32(code[1])
}

// rtlLanguages lists two-letter codes written right to left; their
// articles are wrapped with dir="rtl".
var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"yi": true,
	"ps": true,
	"sd": true,
	"ug": true,
	"dv": true,
	"ku": true,
}
