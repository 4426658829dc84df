// Package jobs bounds how many derivations run at once. Every HTTP request
// and CLI task takes a slot from a Limiter before decoding anything, after
// waiting out any memory pressure reported by the memory monitor.
package jobs
