package scanning

import "strings"

// UnknownName is the placeholder for a name field that could not be determined
const UnknownName = "不明"

// honorifics are stripped from the end of a name, most specific first.
// At most one suffix is removed.
var honorifics = []string{"さん", "様", "殿", "氏", "先生"}

// NormalizeName canonicalizes a person or institution name so that
// incidental formatting differences do not split one (hospital, patient)
// group into several. All full-width and half-width spaces are removed and
// a single trailing honorific is stripped. Empty input, and input that is
// nothing but an honorific, resolve to UnknownName.
//
// The function is idempotent: NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(name string) string {
	normalized := strings.ReplaceAll(name, "　", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.TrimSpace(normalized)

	if normalized == "" {
		return UnknownName
	}

	for _, h := range honorifics {
		if strings.HasSuffix(normalized, h) {
			normalized = strings.TrimSuffix(normalized, h)
			break
		}
	}

	if normalized == "" {
		return UnknownName
	}
	return normalized
}
