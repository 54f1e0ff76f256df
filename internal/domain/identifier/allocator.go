// Package identifier allocates human-readable domain codes such as
// JOB-001 or FAT-012 without a central sequence. The next code is
// derived from the identifiers already visible on the device, so two
// offline devices can allocate independently; the resulting scheme is
// practically unique and the sync engine renumbers the rare collision
// on merge.
package identifier

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultWidth is the zero-padded width of the numeric suffix.
const DefaultWidth = 3

// BaseIndex is where allocation starts when no existing code matches.
const BaseIndex = 1

// NextID scans existing identifiers for the highest numeric suffix of
// the form PREFIX-NNN and returns prefix + (max+1), zero-padded to
// width. Identifiers that do not match the pattern are ignored.
func NextID(prefix string, width int, existing []string) string {
	if width <= 0 {
		width = DefaultWidth
	}
	next := BaseIndex
	if max, ok := maxSuffix(prefix, existing); ok {
		next = max + 1
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, next)
}

// Taken reports whether id is already present in existing.
func Taken(id string, existing []string) bool {
	for _, e := range existing {
		if e == id {
			return true
		}
	}
	return false
}

func maxSuffix(prefix string, existing []string) (int, bool) {
	max, found := 0, false
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	return max, found
}
