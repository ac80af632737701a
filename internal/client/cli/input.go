package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetPassword prints a prompt to w and reads a passphrase from the user's
// terminal without echo. A newline is printed after the read to keep the UI
// tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetConfirmedPassword prompts twice and requires both entries to match, so
// a typo cannot silently lock a recipient out of the shared file.
func GetConfirmedPassword(w io.Writer) ([]byte, error) {
	first, err := GetPassword(w, "Enter passphrase")
	if err != nil {
		return nil, err
	}

	second, err := GetPassword(w, "Repeat passphrase")
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(first, second) {
		return nil, fmt.Errorf("passphrases do not match")
	}
	if len(first) == 0 {
		return nil, fmt.Errorf("passphrase must not be empty")
	}

	return first, nil
}
