package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	actionconv "github.com/elefant-ai/actionspace/internal/cmd/actionconv"
	"github.com/elefant-ai/actionspace/internal/platform/config"
)

func main() {
	cfg, err := actionconv.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[ACTIONCONV] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := actionconv.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to convert: %v", err)
	}
}
