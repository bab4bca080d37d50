package utils

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// PropertyTypes is the vocabulary stored in inmueble.type
var PropertyTypes = []string{
	"apartamento",
	"casa",
	"local comercial",
	"oficina",
	"terreno",
	"quinta",
}

// propertyTypeAliases maps what clients (and models) say to the stored value
var propertyTypeAliases = map[string]string{
	"apartamento":         "apartamento",
	"apartamentos":        "apartamento",
	"apto":                "apartamento",
	"aptos":               "apartamento",
	"departamento":        "apartamento",
	"depto":               "apartamento",
	"piso":                "apartamento",
	"apartment":           "apartamento",
	"flat":                "apartamento",
	"casa":                "casa",
	"casas":               "casa",
	"townhouse":           "casa",
	"house":               "casa",
	"local":               "local comercial",
	"locales":             "local comercial",
	"local comercial":     "local comercial",
	"locales comerciales": "local comercial",
	"comercial":           "local comercial",
	"shop":                "local comercial",
	"oficina":             "oficina",
	"oficinas":            "oficina",
	"office":              "oficina",
	"terreno":             "terreno",
	"terrenos":            "terreno",
	"lote":                "terreno",
	"parcela":             "terreno",
	"land":                "terreno",
	"quinta":              "quinta",
	"quintas":             "quinta",
	"villa":               "quinta",
}

// maxTypoDistance bounds how far a fuzzy match may be from the stored value
const maxTypoDistance = 2

// CanonicalPropertyType maps a free-text property type onto the stored
// vocabulary. Known aliases win, then the closest fuzzy match (accent and
// case insensitive). Anything else is returned lower-cased so that the
// equality predicate still applies to it.
func CanonicalPropertyType(input string) string {
	term := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if term == "" {
		return ""
	}

	if canonical, ok := propertyTypeAliases[term]; ok {
		return canonical
	}

	ranks := fuzzy.RankFindNormalizedFold(term, PropertyTypes)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		if ranks[0].Distance <= maxTypoDistance {
			return ranks[0].Target
		}
	}

	// "apto de 2 habitaciones" style answers: look for a known alias word
	for _, word := range strings.Fields(term) {
		if canonical, ok := propertyTypeAliases[word]; ok {
			return canonical
		}
	}

	return term
}

// IsKnownPropertyType reports whether t is part of the stored vocabulary
func IsKnownPropertyType(t string) bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}
