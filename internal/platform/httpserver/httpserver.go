package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. Write timeout stays generous because /verify
// holds the connection for a full upstream analysis round trip.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
