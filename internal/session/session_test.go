package session

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func cookiesFromPairs(pairs map[string]string) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(pairs))
	for name, value := range pairs {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out
}

const sampleCookieFile = `# Netscape HTTP Cookie File
# https://curl.se/docs/http-cookies.html

.scrap.tf	TRUE	/	TRUE	1893456000	scr_session	abc123def456
#HttpOnly_.scrap.tf	TRUE	/	TRUE	1893456000	scr_token	xyz789
scrap.tf	FALSE	/raffles	FALSE	0	theme	dark
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadCookies(t *testing.T) {
	path := writeTempFile(t, "cookies.txt", sampleCookieFile)

	cookies, err := LoadCookies(path)
	if err != nil {
		t.Fatalf("LoadCookies failed: %v", err)
	}
	if len(cookies) != 3 {
		t.Fatalf("expected 3 cookies, got %d", len(cookies))
	}

	sess := cookies[0]
	if sess.Name != "scr_session" || sess.Value != "abc123def456" {
		t.Errorf("unexpected first cookie: %+v", sess)
	}
	if sess.Domain != ".scrap.tf" {
		t.Errorf("expected domain .scrap.tf, got %s", sess.Domain)
	}
	if !sess.Secure {
		t.Error("expected secure cookie")
	}
	if sess.Expires.Year() != time.Unix(1893456000, 0).UTC().Year() {
		t.Errorf("unexpected expiry: %v", sess.Expires)
	}

	token := cookies[1]
	if !token.HttpOnly {
		t.Error("expected #HttpOnly_ cookie to be marked HttpOnly")
	}
	if token.Domain != ".scrap.tf" {
		t.Errorf("expected HttpOnly domain .scrap.tf, got %s", token.Domain)
	}

	theme := cookies[2]
	if theme.Secure {
		t.Error("expected theme cookie to be insecure")
	}
	if !theme.Expires.IsZero() {
		t.Errorf("expected session cookie to have zero expiry, got %v", theme.Expires)
	}
}

func TestLoadCookiesMissingFile(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing cookie file")
	}
}

func TestLoadCookiesEmptyFile(t *testing.T) {
	path := writeTempFile(t, "cookies.txt", "")
	_, err := LoadCookies(path)
	if err == nil {
		t.Fatal("expected error for empty cookie file")
	}
}

func TestLoadCookiesMalformed(t *testing.T) {
	path := writeTempFile(t, "cookies.txt", "this is not a cookie file\nneither is this\n")
	_, err := LoadCookies(path)
	if err == nil {
		t.Fatal("expected error for malformed cookie file")
	}
}

func TestLoadUserAgentFallback(t *testing.T) {
	s, err := Load(writeTempFile(t, "cookies.txt", sampleCookieFile), filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.UserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", s.UserAgent)
	}
}

func TestLoadUserAgentFromFile(t *testing.T) {
	uaPath := writeTempFile(t, "user-agent.txt", "TestAgent/1.0\nsecond line ignored\n")
	s, err := Load(writeTempFile(t, "cookies.txt", sampleCookieFile), uaPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.UserAgent != "TestAgent/1.0" {
		t.Errorf("expected TestAgent/1.0, got %q", s.UserAgent)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeTempFile(t, "cookies.txt", sampleCookieFile)

	s, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadCookies(path)
	if err != nil {
		t.Fatalf("reloading saved cookies: %v", err)
	}
	if len(reloaded) != len(s.Cookies) {
		t.Fatalf("expected %d cookies after round trip, got %d", len(s.Cookies), len(reloaded))
	}
	for i, c := range reloaded {
		orig := s.Cookies[i]
		if c.Name != orig.Name || c.Value != orig.Value || c.Domain != orig.Domain {
			t.Errorf("cookie %d changed in round trip: %+v vs %+v", i, c, orig)
		}
		if c.HttpOnly != orig.HttpOnly {
			t.Errorf("cookie %d lost HttpOnly flag", i)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Netscape HTTP Cookie File") {
		t.Error("saved file missing Netscape header")
	}
}

func TestUpdateRefreshedCookies(t *testing.T) {
	path := writeTempFile(t, "cookies.txt", sampleCookieFile)
	s, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s.Update(cookiesFromPairs(map[string]string{
		"scr_session": "refreshed-value",
		"brand_new":   "should-be-ignored",
	}))

	if s.Cookies[0].Value != "refreshed-value" {
		t.Errorf("expected refreshed session value, got %q", s.Cookies[0].Value)
	}
	for _, c := range s.Cookies {
		if c.Name == "brand_new" {
			t.Error("Update must not add new cookies")
		}
	}
}
