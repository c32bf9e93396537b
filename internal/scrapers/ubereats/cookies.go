package ubereats

import "strings"

const (
	CookieSession  = "jwt-session"
	CookieLocation = "uev2.loc"
)

var requiredCookies = []string{CookieSession, CookieLocation}

// Credentials are the browser cookies of a logged in session. Every pair is
// sent along, not just the required ones, exactly as it was given.
type Credentials struct {
	names  []string
	values map[string]string
}

// ParseCookies parses a `key=value; key=value` cookie string as copied out of
// a browser. Pairs without `=` are skipped since browsers attach plenty of
// unrelated cookies. Values are kept verbatim, a repeated name keeps its
// first position and its last value.
func ParseCookies(raw string) (Credentials, error) {
	creds := Credentials{values: make(map[string]string)}
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, seen := creds.values[key]; !seen {
			creds.names = append(creds.names, key)
		}
		creds.values[key] = strings.TrimSpace(value)
	}

	for _, key := range requiredCookies {
		if creds.values[key] == "" {
			return Credentials{}, &MissingCredentialError{Key: key}
		}
	}
	return creds, nil
}

func (c Credentials) Location() string {
	return c.values[CookieLocation]
}

// Header renders the pairs as a raw Cookie header value in their original
// order. The values are opaque tokens and are not re-encoded.
func (c Credentials) Header() string {
	parts := make([]string, len(c.names))
	for i, name := range c.names {
		parts[i] = name + "=" + c.values[name]
	}
	return strings.Join(parts, "; ")
}
