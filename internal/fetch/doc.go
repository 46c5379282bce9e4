// Package fetch loads LiveInternet statistics pages.
//
// Client fetches pages over HTTP, optionally through a SOCKS5 proxy, with a
// shared politeness rate limit, a body size cap and charset decoding to
// UTF-8. DirFetcher reads pages saved to a local directory so a batch can be
// replayed offline. Both implement Fetcher.
package fetch
