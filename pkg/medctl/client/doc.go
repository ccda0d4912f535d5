// Package client implements the HTTP client medctl uses to talk to the
// MediTracker medicines API. Non-2xx responses are returned to the caller
// unchanged so the CLI can render them; only transport failures are errors.
package client
