// Package plex implements the search provider against a Plex media server.
//
// The client resolves the configured library's section key once, then
// answers title searches from that section. Provider failures surface as
// errors tagged with services.ErrProvider; the ranker converts them to
// empty results.
package plex
