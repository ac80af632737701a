package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/zeroshare/zeroshare/internal/client/services"
	"github.com/zeroshare/zeroshare/internal/common"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Receive downloads the package behind a share link, decrypts it and writes
// the plaintext file. A passphrase is prompted for only when the link is
// passphrase protected.
func (a *App) Receive(ctx context.Context, args []string) error {

	fs := flag.NewFlagSet("receive", flag.ContinueOnError)
	fs.SetOutput(a.out)
	output := fs.String("o", "", "output path (defaults to the sender's file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: receive [-o <output>] <link>")
	}
	rawLink := fs.Arg(0)

	link, err := services.ParseShareLink(rawLink)
	if err != nil {
		return err
	}

	var passphrase []byte
	if link.Protected() {
		pw, err := getPassword(a.out, "Enter passphrase")
		if err != nil {
			return err
		}
		passphrase = pw
		defer common.WipeByteArray(passphrase)
	}

	written, err := a.service.Receive(ctx, rawLink, passphrase, *output)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAuthentication):
			return fmt.Errorf("decryption failed: wrong passphrase or corrupted link")
		case errors.Is(err, common.ErrExpired):
			return fmt.Errorf("this share link has expired")
		case errors.Is(err, common.ErrAlreadyConsumed):
			return fmt.Errorf("this file has reached its download limit")
		case errors.Is(err, common.ErrNotFound):
			return fmt.Errorf("this file does not exist or was already taken down")
		}
		return err
	}

	fmt.Fprintf(a.out, "Saved to %s\n", written)
	return nil
}
