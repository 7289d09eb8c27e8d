package core

import (
	"fmt"
	"strings"
)

const invalidFilenameChars = "<>:\"/\\|?*"

// SanitizeName makes name safe to use as a single path element. Control
// characters and reserved punctuation collapse into single spaces.
//
// The result becomes the prefix of every season directory under the library
// root. An empty result, "." or ".." would resolve to the root or its parent
// instead of a child directory, so those are rejected.
func SanitizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is empty after sanitization")
	}

	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range name {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteRune(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimSpace(b.String())
	if result == "" || result == "." || result == ".." {
		return "", fmt.Errorf("name %q is empty after sanitization", name)
	}
	return result, nil
}
