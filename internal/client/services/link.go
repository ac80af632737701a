package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/zeroshare/zeroshare/internal/common"
	"github.com/zeroshare/zeroshare/internal/cryptox"
)

// ShareLink is the one artifact a sender hands to a recipient. The secret
// material lives in the URL fragment, which browsers and HTTP clients never
// transmit, so the server only ever sees the object id.
//
// Exactly one of Key and Salt is set. Key mode carries the content key
// itself; salt mode carries the key derivation salt and the recipient must
// also know the passphrase.
type ShareLink struct {
	ID   string
	Key  []byte
	Salt []byte
}

// String renders the link against the given server base URL.
func (l *ShareLink) String(baseURL string) string {
	secret := l.Key
	if secret == nil {
		secret = l.Salt
	}
	return fmt.Sprintf("%s/download/%s#%s", strings.TrimRight(baseURL, "/"), l.ID, cryptox.EncodeKey(secret))
}

// ParseShareLink extracts the object id and the secret material from a link.
// Key and salt mode are told apart by the decoded fragment length.
func ParseShareLink(raw string) (*ShareLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid link: %v", common.ErrFormat, err)
	}

	const prefix = "/download/"
	idx := strings.LastIndex(u.Path, prefix)
	if idx < 0 {
		return nil, fmt.Errorf("%w: link is missing the download path", common.ErrFormat)
	}
	id := u.Path[idx+len(prefix):]
	if id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("%w: link is missing the object id", common.ErrFormat)
	}

	if u.Fragment == "" {
		return nil, fmt.Errorf("%w: link is missing the key fragment", common.ErrFormat)
	}

	secret, err := cryptox.DecodeKey(u.Fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable key fragment: %v", common.ErrFormat, err)
	}

	switch len(secret) {
	case cryptox.KeySize:
		return &ShareLink{ID: id, Key: secret}, nil
	case cryptox.SaltSize:
		return &ShareLink{ID: id, Salt: secret}, nil
	default:
		return nil, fmt.Errorf("%w: key fragment has unexpected length %d", common.ErrFormat, len(secret))
	}
}

// Protected reports whether decrypting requires a passphrase.
func (l *ShareLink) Protected() bool {
	return l.Salt != nil
}
