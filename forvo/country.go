package forvo

import "strings"

// countryISO2 maps the English country name from a pronunciation item to
// its ISO 3166-1 alpha-2 code, or "" when unknown. The table covers the
// countries Forvo speakers commonly report.
func countryISO2(name string) string {
	return countryCodes[strings.ToLower(strings.TrimSpace(name))]
}

var countryCodes = map[string]string{
	"argentina":            "ar",
	"australia":            "au",
	"austria":              "at",
	"belgium":              "be",
	"brazil":               "br",
	"bulgaria":             "bg",
	"canada":               "ca",
	"chile":                "cl",
	"china":                "cn",
	"colombia":             "co",
	"croatia":              "hr",
	"czech republic":       "cz",
	"denmark":              "dk",
	"egypt":                "eg",
	"estonia":              "ee",
	"finland":              "fi",
	"france":               "fr",
	"germany":              "de",
	"greece":               "gr",
	"hungary":              "hu",
	"iceland":              "is",
	"india":                "in",
	"indonesia":            "id",
	"iran":                 "ir",
	"ireland":              "ie",
	"israel":               "il",
	"italy":                "it",
	"japan":                "jp",
	"latvia":               "lv",
	"lithuania":            "lt",
	"mexico":               "mx",
	"netherlands":          "nl",
	"new zealand":          "nz",
	"norway":               "no",
	"pakistan":             "pk",
	"peru":                 "pe",
	"philippines":          "ph",
	"poland":               "pl",
	"portugal":             "pt",
	"romania":              "ro",
	"russia":               "ru",
	"saudi arabia":         "sa",
	"serbia":               "rs",
	"slovakia":             "sk",
	"slovenia":             "si",
	"south africa":         "za",
	"south korea":          "kr",
	"spain":                "es",
	"sweden":               "se",
	"switzerland":          "ch",
	"taiwan":               "tw",
	"thailand":             "th",
	"turkey":               "tr",
	"ukraine":              "ua",
	"united arab emirates": "ae",
	"united kingdom":       "gb",
	"united states":        "us",
	"uruguay":              "uy",
	"venezuela":            "ve",
	"vietnam":              "vn",
}
