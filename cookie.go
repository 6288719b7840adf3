package rumbleup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Cookie is one entry of a browser cookie export (EditThisCookie / Cookie-Editor format).
type Cookie struct {
	Domain         string  `json:"domain"`
	ExpirationDate float64 `json:"expirationDate"`
	HostOnly       bool    `json:"hostOnly"`
	HTTPOnly       bool    `json:"httpOnly"`
	Name           string  `json:"name"`
	Path           string  `json:"path"`
	SameSite       string  `json:"sameSite"`
	Secure         bool    `json:"secure"`
	Session        bool    `json:"session"`
	StoreID        string  `json:"storeId"`
	Value          string  `json:"value"`
	ID             int     `json:"id"`
}

func (c *Cookie) Builtin() *http.Cookie {
	cookie := &http.Cookie{
		Name:     c.Name,
		Domain:   c.Domain,
		Value:    c.Value,
		Path:     c.Path,
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: parseSameSite(c.SameSite),
	}
	if !c.Session && c.ExpirationDate > 0 {
		cookie.Expires = time.Unix(int64(c.ExpirationDate), 0)
	}
	return cookie
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none", "no_restriction":
		return http.SameSiteNoneMode
	}
	return http.SameSiteDefaultMode
}

type Cookies []*Cookie

func ParseCookiesFromJSONFile(path string) (Cookies, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cookies Cookies
	if err := json.NewDecoder(file).Decode(&cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookies %s: %w", path, err)
	}
	return cookies, nil
}

func (cookies Cookies) Builtin() []*http.Cookie {
	c := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c = append(c, cookie.Builtin())
	}
	return c
}
