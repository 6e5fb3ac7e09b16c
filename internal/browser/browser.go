// Package browser assembles the browser-emulating HTTP client used for all
// scrap.tf traffic: a resty client with the saved session cookies in its
// jar, the configured user agent, a cloudflare bypass transport, and a
// redirect policy pinned to the target domain.
package browser

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/rvik/scraptf-autoenter/internal/session"
)

// Timeout bounds every request made through the browser.
const Timeout = 30 * time.Second

// Browser wraps a resty client pre-loaded with session credentials.
type Browser struct {
	BaseURL *url.URL
	Client  *resty.Client
}

// New creates a Browser for the given base URL carrying the session's
// cookies and user agent on every request.
func New(baseURL string, sess *session.Session) (*Browser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	jar.SetCookies(u, sess.Cookies)

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", sess.UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(u.Hostname()))
	client.SetTimeout(Timeout)

	return &Browser{
		BaseURL: u,
		Client:  client,
	}, nil
}

// Cookies returns the jar's current cookies for the base URL, including any
// values the server refreshed during the run.
func (b *Browser) Cookies() []*http.Cookie {
	return b.Client.GetClient().Jar.Cookies(b.BaseURL)
}
