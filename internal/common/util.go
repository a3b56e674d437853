package common

// WipeByteArray zeroes b in place. Passphrases and access tokens are wiped
// as soon as they have been used.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
