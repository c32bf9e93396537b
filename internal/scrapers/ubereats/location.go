package ubereats

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"ubereats-scraper/pkg/jsonval"
)

// Location is what a feed request is made for.
type Location struct {
	City   string
	Region Region
}

// ResolveLocation normalizes the region of a city, this never touches the
// network.
func ResolveLocation(city, region string) (Location, error) {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return Location{}, fmt.Errorf("city is required")
	}
	r, err := NormalizeRegion(region)
	if err != nil {
		return Location{}, err
	}
	return Location{City: city, Region: r}, nil
}

func (l Location) String() string {
	return fmt.Sprintf("%s, %s", l.City, l.Region.Code)
}

// the feed expects this suffix after the encoded location
const cacheKeySuffix = "/DELIVERY///0/0//[]///"

type fallbackAddress struct {
	Title                 string `json:"title"`
	Subtitle              string `json:"subtitle"`
	Address1              string `json:"address1"`
	Address2              string `json:"address2"`
	EaterFormattedAddress string `json:"eaterFormattedAddress"`
}

type cacheLocation struct {
	Address       any         `json:"address"`
	Latitude      json.Number `json:"latitude"`
	Longitude     json.Number `json:"longitude"`
	Reference     string      `json:"reference"`
	ReferenceType string      `json:"referenceType"`
	Type          string      `json:"type"`
	Source        string      `json:"source"`
}

// decodeLocationCookie decodes the url-encoded JSON held in uev2.loc.
func decodeLocationCookie(encoded string) (jsonval.Value, error) {
	if encoded == "" {
		return jsonval.Value{}, fmt.Errorf("empty location cookie")
	}
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("unescape location cookie: %w", err)
	}
	value, err := jsonval.Parse([]byte(decoded))
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("parse location cookie: %w", err)
	}
	if !value.IsObject() {
		return jsonval.Value{}, fmt.Errorf("location cookie is not an object")
	}
	return value, nil
}

func nonZeroNumber(v jsonval.Value) (string, bool) {
	n, ok := v.Scalar()
	n = strings.TrimSpace(n)
	if !ok || n == "" {
		return "", false
	}
	f, err := json.Number(n).Float64()
	if err != nil || f == 0 {
		return "", false
	}
	return n, true
}

func fallbackCacheLocation(loc Location) cacheLocation {
	return cacheLocation{
		Address:       fallbackAddress{Title: loc.String()},
		Latitude:      "0",
		Longitude:     "0",
		ReferenceType: "google_places",
		Type:          "google_places",
		Source:        "user_autocomplete",
	}
}

func cacheLocationFromCookie(locationCookie string, loc Location) (cacheLocation, error) {
	cookie, err := decodeLocationCookie(locationCookie)
	if err != nil {
		return fallbackCacheLocation(loc), err
	}
	lat, hasLat := nonZeroNumber(cookie.Key("latitude"))
	lng, hasLng := nonZeroNumber(cookie.Key("longitude"))
	if !hasLat || !hasLng {
		return fallbackCacheLocation(loc), fmt.Errorf("location cookie has no coordinates")
	}

	data := fallbackCacheLocation(loc)
	data.Latitude = json.Number(lat)
	data.Longitude = json.Number(lng)
	data.Address = map[string]any{}
	if address := cookie.Key("address"); address.IsObject() {
		data.Address = address.Raw()
	}
	data.Reference = cookie.Key("reference").StringOr("")
	return data, nil
}

// buildCacheKey derives the feed's cacheKey from the location cookie. When
// the cookie has no usable coordinates, the city and region are used as the
// address title instead and `fallback` says why.
func buildCacheKey(locationCookie string, loc Location) (key string, fallback error) {
	data, fallback := cacheLocationFromCookie(locationCookie, loc)
	serialized, err := json.Marshal(data)
	if err != nil {
		fallback = fmt.Errorf("encode location: %w", err)
		serialized, _ = json.Marshal(fallbackCacheLocation(loc))
	}
	return base64.StdEncoding.EncodeToString(serialized) + cacheKeySuffix, fallback
}
