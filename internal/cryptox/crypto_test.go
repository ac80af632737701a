package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zeroshare/zeroshare/internal/common"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"small", []byte("hello world")},
		{"binary", []byte{0x00, 0xff, 0x10, 0x80, 0x7f}},
		{"larger", bytes.Repeat([]byte("zeroshare"), 4096)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nonce, ct, err := Encrypt(tc.plaintext, key)
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}
			got, err := Decrypt(nonce, ct, key)
			if err != nil {
				t.Fatalf("decrypt: %v", err)
			}
			if !bytes.Equal(got, tc.plaintext) {
				t.Fatalf("round trip mismatch")
			}
		})
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key, _ := GenerateKey()
	n1, _, err := Encrypt([]byte("x"), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n2, _, err := Encrypt([]byte("x"), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n1) != NonceSize || len(n2) != NonceSize {
		t.Fatalf("expected %d-byte nonces, got %d and %d", NonceSize, len(n1), len(n2))
	}
	if bytes.Equal(n1, n2) {
		t.Fatal("nonce repeated across encryptions")
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key, _ := GenerateKey()
	plaintext := []byte("the quick brown fox")
	nonce, ct, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// flip one bit in every position, including the tag
	for i := range ct {
		mangled := bytes.Clone(ct)
		mangled[i] ^= 0x01
		if _, err := Decrypt(nonce, mangled, key); !errors.Is(err, common.ErrAuthentication) {
			t.Fatalf("bit flip at %d: want ErrAuthentication, got %v", i, err)
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	k1, _ := GenerateKey()
	k2, _ := GenerateKey()
	nonce, ct, err := Encrypt([]byte("secret"), k1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Decrypt(nonce, ct, k2); !errors.Is(err, common.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication, got %v", err)
	}
}

func TestDecrypt_TruncatedCiphertext(t *testing.T) {
	key, _ := GenerateKey()
	nonce, ct, err := Encrypt([]byte("secret"), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Decrypt(nonce, ct[:len(ct)-1], key); !errors.Is(err, common.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication, got %v", err)
	}
}

func TestEncrypt_InvalidKeyLength(t *testing.T) {
	if _, _, err := Encrypt([]byte("x"), []byte("short")); !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("want ErrCrypto, got %v", err)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	passphrase := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	k1 := DeriveKey(passphrase, salt)
	k2 := DeriveKey(passphrase, salt)
	if !bytes.Equal(k1, k2) {
		t.Fatal("same passphrase and salt must derive the same key")
	}
	if len(k1) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(k1))
	}

	k3 := DeriveKey(passphrase, []byte("fedcba9876543210"))
	if bytes.Equal(k1, k3) {
		t.Fatal("different salts must derive different keys")
	}
}

func TestEncodeDecodeKey_RoundTrip(t *testing.T) {
	key, _ := GenerateKey()
	s := EncodeKey(key)
	got, err := DecodeKey(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatal("key round trip mismatch")
	}
}

func TestDecodeKey_Invalid(t *testing.T) {
	if _, err := DecodeKey("not!!valid//base64url"); !errors.Is(err, common.ErrFormat) {
		t.Fatalf("want ErrFormat, got %v", err)
	}
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	key, _ := GenerateKey()
	nonce, ct, err := Encrypt([]byte("payload"), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	packed := Pack(nonce, ct)
	if len(packed) != len(nonce)+len(ct) {
		t.Fatalf("unexpected packed length %d", len(packed))
	}

	gotNonce, gotCt, err := Unpack(packed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(gotNonce, nonce) || !bytes.Equal(gotCt, ct) {
		t.Fatal("unpack mismatch")
	}

	plaintext, err := Decrypt(gotNonce, gotCt, key)
	if err != nil {
		t.Fatalf("decrypt after unpack: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("payload")) {
		t.Fatal("plaintext mismatch after unpack")
	}
}

func TestUnpack_TooShort(t *testing.T) {
	for _, n := range []int{0, 1, NonceSize - 1} {
		if _, _, err := Unpack(make([]byte, n)); !errors.Is(err, common.ErrFormat) {
			t.Fatalf("len=%d: want ErrFormat, got %v", n, err)
		}
	}
}

func TestUnpack_NonceOnly(t *testing.T) {
	// a package holding exactly one nonce and no ciphertext is structurally
	// valid; decryption is where it fails
	nonce, ct, err := Unpack(make([]byte, NonceSize))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nonce) != NonceSize || len(ct) != 0 {
		t.Fatalf("unexpected split: nonce=%d ct=%d", len(nonce), len(ct))
	}
}
