package core

import (
	"sort"
	"strconv"
	"strings"
)

// NumericKey decomposes a release string into dot-separated integer
// components for ordering. Anything after the first "-" is ignored and
// non-numeric segments become 0, so "47.2.0" > "47.1.0" and
// "21.4.1-beta" keys the same as "21.4.1".
func NumericKey(release string) []int {
	base, _, _ := strings.Cut(release, "-")
	parts := strings.Split(base, ".")
	key := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		key[i] = n
	}
	return key
}

func compareKeys(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// SortReleasesDesc sorts releases in place, highest numeric key first.
// The sort is stable so equal keys keep their upstream order.
func SortReleasesDesc(releases []string) {
	sort.SliceStable(releases, func(i, j int) bool {
		return compareKeys(NumericKey(releases[i]), NumericKey(releases[j])) > 0
	})
}
