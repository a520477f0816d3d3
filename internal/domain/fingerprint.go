package domain

import (
	"strconv"
	"strings"
)

// fingerprintSep never appears in upstream identifiers, so joined
// parts cannot collide across positions.
const fingerprintSep = "|"

// Fingerprint builds the deterministic cache key for one logical
// operation. Callers pass every parameter that affects the cacheable
// response, in a fixed order; session identifiers must not be passed.
func Fingerprint(op string, parts ...string) string {
	var b strings.Builder
	b.WriteString(op)
	for _, part := range parts {
		b.WriteString(fingerprintSep)
		b.WriteString(part)
	}
	return b.String()
}

// StringPart canonicalizes a named string parameter for Fingerprint.
func StringPart(name, value string) string {
	return name + "=" + strings.TrimSpace(value)
}

// BoolPart canonicalizes a named boolean parameter for Fingerprint.
func BoolPart(name string, value bool) string {
	return name + "=" + strconv.FormatBool(value)
}

// OptBoolPart canonicalizes a named optional boolean parameter for
// Fingerprint. Absence is distinct from an explicit false because the
// upstream default for an omitted flag differs from false.
func OptBoolPart(name string, value *bool) string {
	if value == nil {
		return name + "=absent"
	}
	return BoolPart(name, *value)
}

// IntPart canonicalizes a named integer parameter for Fingerprint.
func IntPart(name string, value int) string {
	return name + "=" + strconv.Itoa(value)
}
