// Package ratelimit provides the per-user sliding-window admission gate.
//
// Each user has a window of recent request timestamps. A call prunes entries
// older than the window duration, denies when the pruned window is full
// (without recording the attempt), and otherwise records the attempt and
// admits. Denied calls never grow a window.
package ratelimit
