// Package harness decides whether an artifact looks like a generated test
// harness whose intra-process parallelism must be clamped.
package harness

import "strings"

const suffixLen = 16

// IsGeneratedHarness reports whether name matches the shape of a generated
// test harness: the part after the final '-' is exactly sixteen hexadecimal
// digits. Matching binaries get a forced single worker thread so the shared
// hardware is never touched by more than one thread at a time. False
// negatives fall back to default parallelism; that is acceptable.
func IsGeneratedHarness(name string) bool {
	idx := strings.LastIndexByte(name, '-')
	if idx < 0 {
		return false
	}

	suffix := name[idx+1:]
	if len(suffix) != suffixLen {
		return false
	}

	for _, r := range suffix {
		if !isHexDigit(r) {
			return false
		}
	}

	return true
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}

	return false
}
