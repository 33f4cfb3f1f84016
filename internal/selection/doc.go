// Package selection manages disambiguation sessions.
//
// When a request matches several movies, a session offers the requester a
// bounded list of options. A session is consumed by exactly one valid choice
// from its owner, expires after a timeout, and maps option indices to
// candidates so the consuming call looks the choice up rather than closing
// over it.
package selection
