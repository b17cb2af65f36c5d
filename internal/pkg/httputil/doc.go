// Package httputil provides small helpers for writing consistent JSON
// responses from the tracking server's handlers.
package httputil
