package cryptox

import (
	"fmt"

	"github.com/zeroshare/zeroshare/internal/common"
)

// Pack frames nonce and ciphertext into the transport layout:
//
//	nonce (12 bytes) || ciphertext || tag
//
// The tag is already part of the GCM ciphertext, so Pack is a plain
// concatenation. It makes no cryptographic decisions of its own.
func Pack(nonce, ciphertext []byte) []byte {
	out := make([]byte, 0, len(nonce)+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out
}

// Unpack splits a framed package back into nonce and ciphertext. Returns
// common.ErrFormat if the input is shorter than the fixed nonce length.
func Unpack(b []byte) (nonce, ciphertext []byte, err error) {
	if len(b) < NonceSize {
		return nil, nil, fmt.Errorf("%w: package shorter than nonce (%d bytes)", common.ErrFormat, len(b))
	}
	return b[:NonceSize], b[NonceSize:], nil
}
