// Package scraptf is the HTTP client for the scrap.tf raffle endpoints.
//
// It drives the public raffle listing, the pagination AJAX endpoint, and the
// raffle entry form, delegating all markup interpretation to the raffle
// package. Every method takes a context and performs blocking network I/O.
package scraptf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/rvik/scraptf-autoenter/internal/browser"
	"github.com/rvik/scraptf-autoenter/internal/raffle"
)

// DefaultBaseURL is the production site.
const DefaultBaseURL = "https://scrap.tf"

const (
	rafflesPath  = "/raffles"
	paginatePath = "/ajax/raffles/Paginate"
	enterPath    = "/ajax/viewraffle/EnterRaffle"
)

// Client calls the scrap.tf raffle endpoints through a browser session.
type Client struct {
	http *resty.Client
}

// NewClient creates a Client on top of an assembled browser.
func NewClient(b *browser.Browser) *Client {
	return &Client{http: b.Client}
}

// EnterResult is the site's verdict on one entry submission.
type EnterResult struct {
	Success bool
	Message string
}

// paginateResponse is the JSON envelope of the Paginate AJAX endpoint.
// The raffle markup itself arrives as an HTML fragment inside the envelope.
type paginateResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
	Done    bool   `json:"done"`
}

// enterResponse is the JSON envelope of the EnterRaffle endpoint. The site
// reports success as a boolean but returns other types on some failures, so
// it is decoded loosely and anything non-boolean counts as failure.
type enterResponse struct {
	Success interface{} `json:"success"`
	Message string      `json:"message"`
}

// MainPage fetches the raffle listing page and returns its CSRF token
// together with the parsed document for further extraction.
func (c *Client) MainPage(ctx context.Context) (string, *goquery.Document, error) {
	doc, err := c.getDocument(ctx, rafflesPath)
	if err != nil {
		return "", nil, err
	}

	csrf, err := raffle.ExtractCSRF(doc)
	if err != nil {
		return "", nil, err
	}
	return csrf, doc, nil
}

// RaffleBatch fetches one page of raffles starting after the given raffle ID
// (empty for the newest page). It returns the batch in newest-first order and
// whether the listing is exhausted.
func (c *Client) RaffleBatch(ctx context.Context, csrf, start string) ([]raffle.Raffle, bool, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"start":  start,
			"sort":   "0",
			"puzzle": "0",
			"csrf":   csrf,
		}).
		Post(paginatePath)
	if err != nil {
		return nil, false, fmt.Errorf("fetching raffle batch: %w", err)
	}
	if res.IsError() {
		return nil, false, fmt.Errorf("fetching raffle batch: unexpected status code: %d", res.StatusCode())
	}

	var envelope paginateResponse
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return nil, false, fmt.Errorf("decoding raffle batch: %w", err)
	}
	if !envelope.Success {
		return nil, false, fmt.Errorf("raffle batch rejected by site (start=%q)", start)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(envelope.HTML))
	if err != nil {
		return nil, false, fmt.Errorf("parsing raffle batch HTML: %w", err)
	}

	return raffle.ParseListing(doc), envelope.Done, nil
}

// AllRaffles pages through the listing until the site reports it exhausted.
// Results are in newest-first order.
func (c *Client) AllRaffles(ctx context.Context, csrf string) ([]raffle.Raffle, error) {
	var raffles []raffle.Raffle
	start := ""
	for {
		batch, done, err := c.RaffleBatch(ctx, csrf, start)
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, batch...)
		if done {
			return raffles, nil
		}
		if len(batch) == 0 {
			return nil, fmt.Errorf("pagination made no progress after %d raffles", len(raffles))
		}
		start = raffles[len(raffles)-1].ID
	}
}

// EnterRaffle submits an entry for one raffle: it loads the raffle page,
// extracts the session CSRF token and the per-raffle entry hash, posts the
// entry form, and returns the site's verdict. Raffle IDs are
// case-insensitive; the site canonicalizes them to upper case.
func (c *Client) EnterRaffle(ctx context.Context, id string) (EnterResult, error) {
	id = strings.ToUpper(id)

	doc, err := c.getDocument(ctx, rafflesPath+"/"+id)
	if err != nil {
		return EnterResult{}, err
	}

	csrf, err := raffle.ExtractCSRF(doc)
	if err != nil {
		return EnterResult{}, err
	}
	hash, err := raffle.ExtractEntryHash(doc)
	if err != nil {
		return EnterResult{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"raffle": id,
			"hash":   hash,
			"csrf":   csrf,
		}).
		Post(enterPath)
	if err != nil {
		return EnterResult{}, fmt.Errorf("submitting entry for %s: %w", id, err)
	}
	if res.IsError() {
		return EnterResult{}, fmt.Errorf("submitting entry for %s: unexpected status code: %d", id, res.StatusCode())
	}

	var envelope enterResponse
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return EnterResult{}, fmt.Errorf("decoding entry response for %s: %w", id, err)
	}

	success, _ := envelope.Success.(bool)
	return EnterResult{Success: success, Message: envelope.Message}, nil
}

// Stats fetches the listing page and reads the account's entered/total
// raffle counter from it.
func (c *Client) Stats(ctx context.Context) (raffle.Stats, error) {
	doc, err := c.getDocument(ctx, rafflesPath)
	if err != nil {
		return raffle.Stats{}, err
	}
	return raffle.ParseStats(doc)
}

func (c *Client) getDocument(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", path, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}
