// Command marquee is the CLI for the marquee daemon. It checks whether a
// movie is in the library, submits requests, resolves ambiguous matches,
// and exposes admin diagnostics over the daemon's HTTP API.
package main
