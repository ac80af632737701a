// Package cli implements the ZeroShare command-line interface: a small
// command dispatcher around the send and receive workflows.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zeroshare/zeroshare/internal/client/client"
	"github.com/zeroshare/zeroshare/internal/client/config"
	"github.com/zeroshare/zeroshare/internal/client/services"
)

// shareService is the subset of the share workflows the CLI drives.
// It is an interface so command tests can substitute a stub.
type shareService interface {
	Send(ctx context.Context, path string, passphrase []byte) (string, error)
	Receive(ctx context.Context, rawLink string, passphrase []byte, outPath string) (string, error)
}

type App struct {
	config  *config.Config
	service shareService
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	transport, err := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	svc := services.NewShareService(transport, c.ServerBaseURL)

	return &App{config: c, service: svc, out: os.Stdout}, nil
}

// Run dispatches one command. args holds the command name and its own
// arguments, with configuration flags already stripped by the caller.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "send":
		return a.Send(ctx, args[1:])
	case "receive":
		return a.Receive(ctx, args[1:])
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, `Usage:
  zeroshare [flags] send [-protect] <file>
  zeroshare [flags] receive [-o <output>] <link>

Commands:
  send      encrypt a file, upload it and print the share link
  receive   download a package from a share link and decrypt it

Flags:
  -a string   base URL of the backend server
  -t int      request timeout in seconds
  -c string   path to a JSON config file`)
}
