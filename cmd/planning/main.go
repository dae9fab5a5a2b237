// Command planning runs the planning backend and its maintenance tasks.
//
// Usage:
//
//	planning serve
//	planning migrate up|down|status
//	planning user create --email=... --name=... --password=... [--role=MEMBRE_MLA]
//	planning user promote --email=... --role=ADMIN
//	planning version
//
// Configuration comes from CONFIG_PATH (YAML), .env and the environment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}
