package helpers

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "igshid": {}, "msclkid": {},
}

// CanonicalURL normalises a result link so the same page reported twice
// (different tracking params, fragment, default port, casing) compares equal.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("url missing host")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		host += ":" + port
	}
	u.Host = strings.TrimPrefix(host, "www.")
	u.Fragment, u.RawFragment = "", ""

	if u.Path == "" {
		u.Path = "/"
	} else {
		u.Path = path.Clean(u.Path)
	}

	q := u.Query()
	for k := range q {
		if _, drop := trackingParams[strings.ToLower(k)]; drop {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode() // Encode sorts by key
	return u.String(), nil
}
