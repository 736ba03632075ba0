package report

import (
	"fmt"
	"strings"
)

// DefaultSuffix is the executable suffix Windows reports on image names.
const DefaultSuffix = ".exe"

// CasePolicy decides whether two names differing only in case are the same.
type CasePolicy int

const (
	// CasePreserve keeps names as reported; "Foo" and "foo" stay distinct.
	CasePreserve CasePolicy = iota
	// CaseFold compares and keys names in lower case.
	CaseFold
)

// ParseCasePolicy accepts "preserve" or "fold".
func ParseCasePolicy(s string) (CasePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preserve", "sensitive":
		return CasePreserve, nil
	case "fold", "insensitive":
		return CaseFold, nil
	default:
		return CasePreserve, fmt.Errorf("unknown case policy %q", s)
	}
}

func (c CasePolicy) String() string {
	if c == CaseFold {
		return "fold"
	}
	return "preserve"
}

// Namer maps raw image names to the canonical names used for grouping and
// ordering.
type Namer struct {
	Suffix string
	Case   CasePolicy
}

// NewNamer returns a Namer stripping suffix under the given case policy.
func NewNamer(suffix string, policy CasePolicy) Namer {
	return Namer{Suffix: suffix, Case: policy}
}

// Canonical strips a trailing Suffix, matched case-insensitively. A name that
// is nothing but the suffix is returned unchanged.
func (n Namer) Canonical(raw string) string {
	if n.Suffix == "" || len(raw) <= len(n.Suffix) {
		return raw
	}
	cut := len(raw) - len(n.Suffix)
	if strings.EqualFold(raw[cut:], n.Suffix) {
		return raw[:cut]
	}
	return raw
}

// Key is the grouping key of raw under the namer's case policy.
func (n Namer) Key(raw string) string {
	name := n.Canonical(raw)
	if n.Case == CaseFold {
		return strings.ToLower(name)
	}
	return name
}

// Less orders two raw names by canonical name.
func (n Namer) Less(a, b string) bool {
	return n.lessCanonical(n.Canonical(a), n.Canonical(b))
}

func (n Namer) lessCanonical(a, b string) bool {
	if n.Case == CaseFold {
		return strings.ToLower(a) < strings.ToLower(b)
	}
	return a < b
}

// Matches reports whether raw names the same program as name, ignoring case
// and the executable suffix on either side.
func (n Namer) Matches(raw, name string) bool {
	return strings.EqualFold(n.Canonical(raw), n.Canonical(name))
}
