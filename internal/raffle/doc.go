// Package raffle holds the raffle domain model and the site-coupled markup
// extraction logic: CSRF tokens from inline scripts, raffle listings from
// pagination fragments, and per-raffle entry hashes from the enter button.
//
// All extraction is pure: identical input HTML yields identical results.
// The rest of the program treats these functions as the single place that
// knows what scrap.tf markup looks like.
package raffle
