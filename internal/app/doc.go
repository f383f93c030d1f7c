// Package app wires configuration, logging, the search controller and the
// HTTP/WebSocket surface into one application context. The App replaces the
// global UI state a renderer would otherwise keep: the current paint tool and
// the controller live here and nowhere else.
package app
