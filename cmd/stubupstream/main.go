// Command stubupstream serves a local fake of the remote verification
// service, so the gateway can be developed and demoed without credentials for
// the real one.
package main

import (
	"net/http"
	"os"
	"strconv"

	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/logger"
	"veridoc/internal/upstream/stub"
)

func main() {
	log := logger.New()

	addr := os.Getenv("VERIDOC_STUB_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	seed := int64(1)
	if v := os.Getenv("VERIDOC_STUB_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = n
		}
	}

	srv := httpserver.New(addr, stub.New(seed).Handler())
	log.Info("stub verification service listening", "addr", addr, "seed", seed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
