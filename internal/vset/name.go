package vset

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// InitialName returns the name of a freshly created set.
func InitialName(base string) string {
	return FormatName(base, 0, 0)
}

// FormatName joins a base name and a version.
func FormatName(base string, major, minor int) string {
	return fmt.Sprintf("%s %d.%d", base, major, minor)
}

// SplitName splits a set name into its base and version. A name without a
// version suffix has version 0.0.
func SplitName(name string) (base string, major, minor int) {
	i := strings.LastIndexByte(name, ' ')
	if i < 0 {
		return name, 0, 0
	}
	ver := name[i+1:]
	majStr, minStr, ok := strings.Cut(ver, ".")
	if !ok {
		return name, 0, 0
	}
	maj, err1 := strconv.Atoi(majStr)
	mnr, err2 := strconv.Atoi(minStr)
	if err1 != nil || err2 != nil || maj < 0 || mnr < 0 {
		return name, 0, 0
	}
	return name[:i], maj, mnr
}

// BaseName returns the name without its version suffix.
func BaseName(name string) string {
	base, _, _ := SplitName(name)
	return base
}

// Increment bumps the minor version of a name.
func Increment(name string) string {
	base, major, minor := SplitName(name)
	return FormatName(base, major, minor+1)
}

// CompareVersions orders two names by their version suffix.
func CompareVersions(a, b string) int {
	_, amaj, amin := SplitName(a)
	_, bmaj, bmin := SplitName(b)
	if c := cmp.Compare(amaj, bmaj); c != 0 {
		return c
	}
	return cmp.Compare(amin, bmin)
}

// Higher returns whichever name has the higher version; a on ties.
func Higher(a, b string) string {
	if CompareVersions(b, a) > 0 {
		return b
	}
	return a
}
