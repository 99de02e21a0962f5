// Package scraper fetches stats pages over HTTP.
//
// Every request carries the statscrape User-Agent and a per-request timeout. Network
// errors, 429 and 5xx responses are treated as transient and retried with exponential
// backoff; any other non-200 status fails immediately. The package returns raw bytes so
// callers can both archive the page and hand it to goquery.
package scraper
