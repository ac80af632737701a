package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zeroshare/zeroshare/internal/common"
)

// getConfirmedPassword is an indirection used to facilitate testing.
var getConfirmedPassword = GetConfirmedPassword

// Send encrypts one file, uploads the package and prints the share link.
//
// With -protect the content key is derived from an interactively entered
// passphrase and the link carries only the salt, so the link alone is not
// enough to decrypt.
func (a *App) Send(ctx context.Context, args []string) error {

	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(a.out)
	protect := fs.Bool("protect", false, "derive the key from a passphrase instead of embedding it in the link")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: send [-protect] <file>")
	}
	path := fs.Arg(0)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	var passphrase []byte
	if *protect {
		pw, err := getConfirmedPassword(a.out)
		if err != nil {
			return err
		}
		passphrase = pw
		defer common.WipeByteArray(passphrase)
	}

	link, err := a.service.Send(ctx, path, passphrase)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Share link (the part after # is never sent to the server):")
	fmt.Fprintln(a.out, link)
	if *protect {
		fmt.Fprintln(a.out, "The recipient will also need the passphrase. Share it separately.")
	}

	return nil
}
