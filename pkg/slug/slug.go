package slug

import "strings"

// Make derives a URL-safe slug from a human-readable value. Letters and
// digits are lowercased and kept; every other run of characters collapses
// into a single hyphen. Derivation is deterministic, so equal inputs always
// produce equal slugs.
func Make(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

// Join builds a dotted compound slug from its parts, e.g. a permission slug
// from subject and action: Join("User", "Create") == "user.create".
func Join(parts ...string) string {
	made := make([]string, 0, len(parts))
	for _, p := range parts {
		made = append(made, Make(p))
	}
	return strings.Join(made, ".")
}
