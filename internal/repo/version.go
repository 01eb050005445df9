package repo

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// CompareLoose orders two version strings the way Munki does: numeric
// components compare numerically where both sides parse, anything else
// falls back to plain lexical comparison. Returns <0, 0, or >0.
func CompareLoose(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
