package main

import (
	"strings"

	"github.com/blang/semver/v4"
)

// Version of counterbench, checked against the requires field of a
// configuration file.
const Version = "1.0.0"

// versionRequired reports whether version satisfies requirement, which is a
// single comparison such as ">=1.9.0" or "v1.3.0" (plain equality). Both sides
// may carry a leading "v". An empty requirement is always satisfied.
func versionRequired(requirement, version string) bool {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return true
	}

	op := ""
	for _, prefix := range []string{">=", "<=", ">", "<", "="} {
		if strings.HasPrefix(requirement, prefix) {
			op = prefix
			requirement = strings.TrimSpace(requirement[len(prefix):])
			break
		}
	}

	want, err := semver.ParseTolerant(requirement)
	if err != nil {
		return false
	}
	have, err := semver.ParseTolerant(version)
	if err != nil {
		return false
	}

	switch op {
	case ">=":
		return have.GTE(want)
	case "<=":
		return have.LTE(want)
	case ">":
		return have.GT(want)
	case "<":
		return have.LT(want)
	default:
		return have.EQ(want)
	}
}
