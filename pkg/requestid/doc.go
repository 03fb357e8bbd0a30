// Package requestid tags every HTTP request with an id that flows through
// the context into structured logs.
package requestid
