package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the registration API. Write timeout stays
// generous because the report endpoint walks every record; the per-request
// Timeout middleware bounds individual handlers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
