package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Useful for removing sensitive data such as encryption keys from memory
// after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
