package main

import (
	"context"
	"log"
	"os"

	"github.com/zeroshare/zeroshare/internal/client/cli"
	"github.com/zeroshare/zeroshare/internal/client/config"
	"github.com/zeroshare/zeroshare/internal/flagx"
)

// configFlags are consumed by the config loader and stripped before the
// remaining arguments are handed to the command dispatcher.
var configFlags = []string{"-a", "-t", "-c", "-config"}

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	args := flagx.ExcludeArgs(os.Args[1:], configFlags)

	if err := app.Run(context.Background(), args); err != nil {
		log.Fatalf("%v", err)
	}

}
