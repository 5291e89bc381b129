package main

import (
	"context"
	"os"

	"github.com/graviox/roundcube-carddav/internal/client/cli"
	"github.com/graviox/roundcube-carddav/internal/client/config"
)

func main() {
	args := os.Args[1:]
	cfg := config.LoadConfig(args)
	os.Exit(cli.NewApp(cfg).Run(context.Background(), args))
}
