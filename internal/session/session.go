// Package session loads and persists the saved scrap.tf browser session.
//
// Credentials come from two local files: a cookie export in the Netscape
// cookies.txt format holding the authenticated session cookies, and an
// optional single-line user agent file. Both are read once at startup; the
// cookie file is written back after a run so refreshed session cookies
// survive across invocations.
package session

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
)

const (
	// DefaultCookiesPath is the cookie file looked for when none is configured.
	DefaultCookiesPath = "cookies.txt"

	// DefaultUserAgentPath is the user agent file looked for when none is configured.
	DefaultUserAgentPath = "user-agent.txt"

	// DefaultUserAgent is sent when no user agent file exists.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/42.0.2311.135 Safari/537.36 Edge/12.246"

	cookieFileHeader = "# Netscape HTTP Cookie File"
)

// Session holds the credentials loaded at startup. It is immutable for the
// process lifetime except for cookie values refreshed by the server.
type Session struct {
	Cookies   []*http.Cookie
	UserAgent string

	cookiesPath string
}

// Load reads the cookie file and, if present, the user agent file.
// A missing, empty, or unparseable cookie file is a fatal startup error;
// a missing user agent file falls back to DefaultUserAgent.
func Load(cookiesPath, userAgentPath string) (*Session, error) {
	cookies, err := LoadCookies(cookiesPath)
	if err != nil {
		return nil, err
	}

	ua, err := loadUserAgent(userAgentPath)
	if err != nil {
		return nil, err
	}

	return &Session{
		Cookies:     cookies,
		UserAgent:   ua,
		cookiesPath: cookiesPath,
	}, nil
}

// LoadCookies parses a Netscape-format cookie export. Lines are
// tab-separated: domain, include-subdomains flag, path, secure flag,
// expiry (unix seconds), name, value. Comment lines start with '#' except
// for the #HttpOnly_ domain prefix used by curl and browser exporters.
func LoadCookies(path string) ([]*http.Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cookie file: %w", err)
	}
	defer f.Close()

	var cookies []*http.Cookie

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, "#HttpOnly_") {
			line = strings.TrimPrefix(line, "#HttpOnly_")
			httpOnly = true
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}

		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			continue
		}

		cookie := &http.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if expires > 0 {
			cookie.Expires = time.Unix(expires, 0).UTC()
		}
		cookies = append(cookies, cookie)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found in %s", path)
	}

	return cookies, nil
}

// loadUserAgent reads the first line of the user agent file, falling back
// to DefaultUserAgent when the file does not exist.
func loadUserAgent(path string) (string, error) {
	if path == "" {
		return DefaultUserAgent, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultUserAgent, nil
		}
		return "", fmt.Errorf("reading user agent file: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return DefaultUserAgent, nil
	}
	return line, nil
}

// RandomUserAgent returns a randomized desktop Chrome user agent.
func RandomUserAgent() string {
	return browser.Chrome()
}

// Update replaces the values of stored cookies that the server refreshed
// during a run. Cookies not already present in the session are ignored;
// the session never grows credentials it was not given.
func (s *Session) Update(refreshed []*http.Cookie) {
	byName := make(map[string]*http.Cookie, len(s.Cookies))
	for _, c := range s.Cookies {
		byName[c.Name] = c
	}
	for _, r := range refreshed {
		if c, ok := byName[r.Name]; ok && r.Value != "" {
			c.Value = r.Value
		}
	}
}

// Save writes the session cookies back to the file they were loaded from.
func (s *Session) Save() error {
	var b strings.Builder
	b.WriteString(cookieFileHeader + "\n")
	b.WriteString("# This file was generated by scraptf-autoenter. Edits may be overwritten.\n\n")

	for _, c := range s.Cookies {
		subdomains := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			subdomains = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		var expires int64
		if !c.Expires.IsZero() {
			expires = c.Expires.Unix()
		}
		domain := c.Domain
		if c.HttpOnly {
			domain = "#HttpOnly_" + domain
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, subdomains, c.Path, secure, expires, c.Name, c.Value)
	}

	if err := os.WriteFile(s.cookiesPath, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("writing cookie file: %w", err)
	}
	return nil
}
