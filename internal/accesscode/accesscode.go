// Package accesscode generates and validates the short bearer codes that
// are a reporter's only credential. Codes must be transcribable by hand,
// so the alphabet drops I and O (confusable with 1 and 0), and must be
// unguessable, so bytes come from crypto/rand only.
package accesscode

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// Alphabet is 34 characters: digits plus uppercase letters minus I and O.
const Alphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// Length of the raw code, before hyphenation. 34^6 ≈ 1.5 billion codes.
const Length = 6

// pattern matches the hyphenated form XXX-XX-X. Validation is
// deliberately looser than the generator alphabet (plain [A-Z0-9]) so a
// mistyped I or O fails lookup, not format validation, and both paths
// surface the same generic not-found.
var pattern = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{2}-[A-Z0-9]$`)

// Generate returns a new code in the form "8X2-99-B". The only failure
// mode is the random source itself, which callers should treat as fatal.
func Generate() (string, error) {
	raw := make([]byte, Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range raw {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		raw[i] = Alphabet[n.Int64()]
	}
	return format(string(raw)), nil
}

// format groups a raw 6-char code as 3-2-1.
func format(raw string) string {
	return raw[0:3] + "-" + raw[3:5] + "-" + raw[5:6]
}

// Normalize uppercases and trims a user-supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether a normalized code matches the fixed format.
func Valid(code string) bool {
	return pattern.MatchString(code)
}
