// Package services implements the client-side workflows: encrypt-and-send
// and fetch-and-decrypt. All cryptography happens here; the transport only
// ever carries ciphertext packages and opaque ids.
package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/zeroshare/zeroshare/internal/common"
	"github.com/zeroshare/zeroshare/internal/cryptox"
)

// Transport is the subset of the HTTP client the share service uses.
type Transport interface {
	Upload(ctx context.Context, name, mimeType string, data []byte) (string, error)
	Download(ctx context.Context, id string) (name, mimeType string, rc io.ReadCloser, err error)
}

// ShareService packages files for sending and unwraps received packages.
type ShareService struct {
	transport Transport
	baseURL   string
}

// NewShareService builds the service. baseURL is used only to render share
// links; requests go through the transport.
func NewShareService(transport Transport, baseURL string) *ShareService {
	return &ShareService{transport: transport, baseURL: baseURL}
}

// Send encrypts the file at path and uploads the resulting package. When
// passphrase is non-empty the content key is derived from it and the link
// carries only the salt; otherwise a random key is generated and embedded in
// the link fragment. Returns the complete share link.
func (s *ShareService) Send(ctx context.Context, path string, passphrase []byte) (string, error) {

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	defer common.WipeByteArray(plaintext)

	var key, salt []byte
	if len(passphrase) > 0 {
		salt, err = cryptox.GenerateSalt()
		if err != nil {
			return "", err
		}
		key = cryptox.DeriveKey(passphrase, salt)
	} else {
		key, err = cryptox.GenerateKey()
		if err != nil {
			return "", err
		}
	}
	defer common.WipeByteArray(key)

	nonce, ciphertext, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return "", err
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id, err := s.transport.Upload(ctx, name, mimeType, cryptox.Pack(nonce, ciphertext))
	if err != nil {
		return "", err
	}

	link := &ShareLink{ID: id}
	if salt != nil {
		link.Salt = salt
	} else {
		link.Key = key
	}

	return link.String(s.baseURL), nil
}

// Receive downloads the package behind the link, decrypts it and writes the
// plaintext to outPath. An empty outPath means the sender's original file
// name in the current directory. Returns the path written.
//
// Passphrase-protected links fail with ErrFormat when no passphrase is
// given; a wrong passphrase surfaces as ErrAuthentication from decryption.
func (s *ShareService) Receive(ctx context.Context, rawLink string, passphrase []byte, outPath string) (string, error) {

	link, err := ParseShareLink(rawLink)
	if err != nil {
		return "", err
	}

	var key []byte
	if link.Protected() {
		if len(passphrase) == 0 {
			return "", fmt.Errorf("%w: link is passphrase protected", common.ErrFormat)
		}
		key = cryptox.DeriveKey(passphrase, link.Salt)
	} else {
		key = link.Key
	}
	defer common.WipeByteArray(key)

	name, _, rc, err := s.transport.Download(ctx, link.ID)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	pkg, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading package: %w", err)
	}

	nonce, ciphertext, err := cryptox.Unpack(pkg)
	if err != nil {
		return "", err
	}

	plaintext, err := cryptox.Decrypt(nonce, ciphertext, key)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(plaintext)

	if outPath == "" {
		// the name comes from the server, trust only its base component
		outPath = filepath.Base(name)
		if outPath == "." || outPath == string(filepath.Separator) {
			outPath = "download"
		}
	}

	if err := os.WriteFile(outPath, plaintext, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}

	return outPath, nil
}
