// Package daemon hosts the long-running marquee process: it wires the Plex
// search client, ranking engine, rate limiter, selection registry, and
// notifier into the request workflow, enforces single-instance execution
// with a file lock, runs the periodic sweeper, and serves the HTTP API the
// CLI talks to.
package daemon
