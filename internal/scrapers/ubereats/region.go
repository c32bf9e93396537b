package ubereats

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	CountryCanada       = "ca"
	CountryUnitedStates = "us"
)

// Region is a state or province as the feed partitions locations.
type Region struct {
	Code    string
	Name    string
	Country string
}

var regions = []Region{
	{Code: "AB", Name: "Alberta", Country: CountryCanada},
	{Code: "BC", Name: "British Columbia", Country: CountryCanada},
	{Code: "MB", Name: "Manitoba", Country: CountryCanada},
	{Code: "NB", Name: "New Brunswick", Country: CountryCanada},
	{Code: "NL", Name: "Newfoundland and Labrador", Country: CountryCanada},
	{Code: "NS", Name: "Nova Scotia", Country: CountryCanada},
	{Code: "NT", Name: "Northwest Territories", Country: CountryCanada},
	{Code: "NU", Name: "Nunavut", Country: CountryCanada},
	{Code: "ON", Name: "Ontario", Country: CountryCanada},
	{Code: "PE", Name: "Prince Edward Island", Country: CountryCanada},
	{Code: "QC", Name: "Quebec", Country: CountryCanada},
	{Code: "SK", Name: "Saskatchewan", Country: CountryCanada},
	{Code: "YT", Name: "Yukon", Country: CountryCanada},

	{Code: "AL", Name: "Alabama", Country: CountryUnitedStates},
	{Code: "AK", Name: "Alaska", Country: CountryUnitedStates},
	{Code: "AZ", Name: "Arizona", Country: CountryUnitedStates},
	{Code: "AR", Name: "Arkansas", Country: CountryUnitedStates},
	{Code: "CA", Name: "California", Country: CountryUnitedStates},
	{Code: "CO", Name: "Colorado", Country: CountryUnitedStates},
	{Code: "CT", Name: "Connecticut", Country: CountryUnitedStates},
	{Code: "DE", Name: "Delaware", Country: CountryUnitedStates},
	{Code: "DC", Name: "District of Columbia", Country: CountryUnitedStates},
	{Code: "FL", Name: "Florida", Country: CountryUnitedStates},
	{Code: "GA", Name: "Georgia", Country: CountryUnitedStates},
	{Code: "HI", Name: "Hawaii", Country: CountryUnitedStates},
	{Code: "ID", Name: "Idaho", Country: CountryUnitedStates},
	{Code: "IL", Name: "Illinois", Country: CountryUnitedStates},
	{Code: "IN", Name: "Indiana", Country: CountryUnitedStates},
	{Code: "IA", Name: "Iowa", Country: CountryUnitedStates},
	{Code: "KS", Name: "Kansas", Country: CountryUnitedStates},
	{Code: "KY", Name: "Kentucky", Country: CountryUnitedStates},
	{Code: "LA", Name: "Louisiana", Country: CountryUnitedStates},
	{Code: "ME", Name: "Maine", Country: CountryUnitedStates},
	{Code: "MD", Name: "Maryland", Country: CountryUnitedStates},
	{Code: "MA", Name: "Massachusetts", Country: CountryUnitedStates},
	{Code: "MI", Name: "Michigan", Country: CountryUnitedStates},
	{Code: "MN", Name: "Minnesota", Country: CountryUnitedStates},
	{Code: "MS", Name: "Mississippi", Country: CountryUnitedStates},
	{Code: "MO", Name: "Missouri", Country: CountryUnitedStates},
	{Code: "MT", Name: "Montana", Country: CountryUnitedStates},
	{Code: "NE", Name: "Nebraska", Country: CountryUnitedStates},
	{Code: "NV", Name: "Nevada", Country: CountryUnitedStates},
	{Code: "NH", Name: "New Hampshire", Country: CountryUnitedStates},
	{Code: "NJ", Name: "New Jersey", Country: CountryUnitedStates},
	{Code: "NM", Name: "New Mexico", Country: CountryUnitedStates},
	{Code: "NY", Name: "New York", Country: CountryUnitedStates},
	{Code: "NC", Name: "North Carolina", Country: CountryUnitedStates},
	{Code: "ND", Name: "North Dakota", Country: CountryUnitedStates},
	{Code: "OH", Name: "Ohio", Country: CountryUnitedStates},
	{Code: "OK", Name: "Oklahoma", Country: CountryUnitedStates},
	{Code: "OR", Name: "Oregon", Country: CountryUnitedStates},
	{Code: "PA", Name: "Pennsylvania", Country: CountryUnitedStates},
	{Code: "RI", Name: "Rhode Island", Country: CountryUnitedStates},
	{Code: "SC", Name: "South Carolina", Country: CountryUnitedStates},
	{Code: "SD", Name: "South Dakota", Country: CountryUnitedStates},
	{Code: "TN", Name: "Tennessee", Country: CountryUnitedStates},
	{Code: "TX", Name: "Texas", Country: CountryUnitedStates},
	{Code: "UT", Name: "Utah", Country: CountryUnitedStates},
	{Code: "VT", Name: "Vermont", Country: CountryUnitedStates},
	{Code: "VA", Name: "Virginia", Country: CountryUnitedStates},
	{Code: "WA", Name: "Washington", Country: CountryUnitedStates},
	{Code: "WV", Name: "West Virginia", Country: CountryUnitedStates},
	{Code: "WI", Name: "Wisconsin", Country: CountryUnitedStates},
	{Code: "WY", Name: "Wyoming", Country: CountryUnitedStates},
}

// aliases are alternate full names, keyed in folded form.
var aliases = map[string]string{
	"NEWFOUNDLAND":    "NL",
	"LABRADOR":        "NL",
	"PEI":             "PE",
	"YUKON TERRITORY": "YT",
	"WASHINGTON DC":   "DC",
	"WASHINGTON D.C.": "DC",
}

var (
	regionsByCode = map[string]Region{}
	regionsByName = map[string]Region{}
)

func init() {
	for _, r := range regions {
		regionsByCode[r.Code] = r
		regionsByName[foldRegion(r.Name)] = r
	}
	for alias, code := range aliases {
		regionsByName[alias] = regionsByCode[code]
	}
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldRegion upper-cases, strips accents and collapses whitespace so that
// " québec " and "QUEBEC" compare equal.
func foldRegion(input string) string {
	stripped, _, err := transform.String(stripAccents, input)
	if err != nil {
		stripped = input
	}
	return strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
}

// Regions returns every known region, provinces and territories first.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// the minimum Jaro-Winkler similarity for a name to be suggested
const suggestionThreshold = 0.85

// NormalizeRegion resolves a state or province given as a two-letter code or
// a full name in any casing.
func NormalizeRegion(input string) (Region, error) {
	folded := foldRegion(input)

	if len(folded) == 2 {
		if r, ok := regionsByCode[folded]; ok {
			return r, nil
		}
	}
	if r, ok := regionsByName[folded]; ok {
		return r, nil
	}

	return Region{}, &UnknownRegionError{
		Input:      input,
		Suggestion: suggestRegion(folded),
	}
}

func suggestRegion(folded string) string {
	if folded == "" {
		return ""
	}

	var best Region
	var bestSimilarity float64
	for _, r := range regions {
		similarity := matchr.JaroWinkler(folded, foldRegion(r.Name), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = r
		}
	}
	if bestSimilarity < suggestionThreshold {
		return ""
	}
	return best.Name
}
