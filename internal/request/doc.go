// Package request drives the query/request/select workflow.
//
// Every user action passes through the same gate sequence: rate-limit
// admission, title validation, library search, then branching on zero, one,
// or many matches. Ambiguous requests open a selection session; confirmed
// requests notify the administrator. Nothing in this package is fatal to
// the hosting process: every branch resolves to a requester-facing outcome
// or a logged internal transition.
package request
