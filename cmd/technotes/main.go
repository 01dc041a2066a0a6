package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/technotes/technotes/pkg/technotes"
)

func main() {
	// cancel on SIGINT/SIGTERM so the server shuts down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := technotes.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
