package raffle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoCSRF is returned when no CSRF token can be found in a page, which
// usually means the session has expired or the site markup changed.
var ErrNoCSRF = errors.New("csrf token not found")

// ErrNoEnterButton is returned when a raffle page has no enter button,
// e.g. for raffles the account is not eligible for.
var ErrNoEnterButton = errors.New("enter button not found")

// Pattern matching the inline script that exposes the per-session CSRF hash:
//
//	ScrapTF.User.Hash = "0123abcd...";
var csrfPattern = regexp.MustCompile(`ScrapTF\.User\.Hash\s*=\s*['"]?([0-9A-Za-z]+)['"]?`)

// Pattern matching the argument list of the enter button's onclick handler:
//
//	<button id="raffle-enter" onclick="EnterRaffle('ABC123', 'hash', ...)">
var onclickArgsPattern = regexp.MustCompile(`\(([^)]*)\)`)

// ExtractCSRF scans a page's inline scripts for the session CSRF token.
func ExtractCSRF(doc *goquery.Document) (string, error) {
	var csrf string
	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		matches := csrfPattern.FindStringSubmatch(sel.Text())
		if matches == nil {
			return true
		}
		csrf = matches[1]
		return false
	})
	if csrf == "" {
		return "", ErrNoCSRF
	}
	return csrf, nil
}

// ParseListing extracts raffles from a listing fragment. Each raffle is a
// div carrying the panel-raffle class; already-entered raffles additionally
// carry the raffle-entered class, and the raffle ID is the last dash-separated
// segment of the div's id attribute. Results keep document order, which the
// site emits newest first.
func ParseListing(doc *goquery.Document) []Raffle {
	var raffles []Raffle
	doc.Find("div.panel-raffle").Each(func(i int, sel *goquery.Selection) {
		id, ok := sel.Attr("id")
		if !ok || id == "" {
			return
		}
		parts := strings.Split(id, "-")
		raffles = append(raffles, Raffle{
			ID:      parts[len(parts)-1],
			Entered: sel.HasClass("raffle-entered"),
		})
	})
	return raffles
}

// ExtractEntryHash pulls the per-raffle entry hash out of the enter button's
// onclick handler. The hash is the second argument of the handler call.
func ExtractEntryHash(doc *goquery.Document) (string, error) {
	button := doc.Find("button#raffle-enter").First()
	if button.Length() == 0 {
		return "", ErrNoEnterButton
	}

	onclick, ok := button.Attr("onclick")
	if !ok {
		return "", ErrNoEnterButton
	}

	matches := onclickArgsPattern.FindStringSubmatch(onclick)
	if matches == nil {
		return "", fmt.Errorf("parsing onclick handler %q: no argument list", onclick)
	}

	args := strings.Split(matches[1], ",")
	if len(args) < 2 {
		return "", fmt.Errorf("parsing onclick handler %q: expected at least 2 arguments", onclick)
	}

	hash := strings.Trim(strings.TrimSpace(args[1]), `'"`)
	if hash == "" {
		return "", fmt.Errorf("parsing onclick handler %q: empty hash argument", onclick)
	}
	return hash, nil
}

// ParseStats reads the entered/total counter from the listing page header.
func ParseStats(doc *goquery.Document) (Stats, error) {
	text := strings.TrimSpace(doc.Find("div.raffle-list-stat h1").First().Text())
	if text == "" {
		return Stats{}, errors.New("raffle stats not found")
	}

	enteredText, totalText, found := strings.Cut(text, "/")
	if !found {
		return Stats{}, fmt.Errorf("parsing raffle stats %q: expected entered/total", text)
	}

	entered, err := strconv.Atoi(strings.TrimSpace(enteredText))
	if err != nil {
		return Stats{}, fmt.Errorf("parsing entered count %q: %w", enteredText, err)
	}
	total, err := strconv.Atoi(strings.TrimSpace(totalText))
	if err != nil {
		return Stats{}, fmt.Errorf("parsing total count %q: %w", totalText, err)
	}

	return Stats{Entered: entered, Total: total}, nil
}
