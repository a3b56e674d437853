// Package ids orders Mastodon status ids. Ids are decimal strings without
// leading zeros, so comparing by length and then lexicographically matches
// numeric order without parsing into a fixed-width integer.
package ids

import "strings"

// Compare returns -1, 0 or +1 as a is older than, equal to or newer than b.
func Compare(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether a is strictly older than b.
func Less(a, b string) bool { return Compare(a, b) < 0 }

// Dec returns the decimal predecessor of id. Dec("1") and Dec("0") return "0";
// "0" is below every real id.
func Dec(id string) string {
	if id == "" || id == "0" {
		return "0"
	}
	b := []byte(id)
	i := len(b) - 1
	for i >= 0 && b[i] == '0' {
		b[i] = '9'
		i--
	}
	if i < 0 {
		return "0"
	}
	b[i]--
	// drop the leading zero left by e.g. "100" -> "099"
	if b[0] == '0' && len(b) > 1 {
		b = b[1:]
	}
	return string(b)
}

// Inc returns the decimal successor of id.
func Inc(id string) string {
	if id == "" {
		return "1"
	}
	b := []byte(id)
	i := len(b) - 1
	for i >= 0 && b[i] == '9' {
		b[i] = '0'
		i--
	}
	if i < 0 {
		return "1" + string(b)
	}
	b[i]++
	return string(b)
}

// Valid reports whether id is a non-empty decimal string without a leading
// zero (other than "0" itself).
func Valid(id string) bool {
	if id == "" {
		return false
	}
	if len(id) > 1 && id[0] == '0' {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
