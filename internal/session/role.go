package session

import "strings"

// Recognized owner spellings. The backend has issued localized role
// labels over time; anything outside this set is not an owner
// (default-deny, so unexpected roles never unlock owner UI).
var ownerRoles = map[string]struct{}{
	"owner":        {},
	"propriétaire": {},
	"proprietaire": {},
	"propri":       {},
}

func IsOwner(raw string) bool {
	r := strings.ToLower(strings.TrimSpace(raw))
	if r == "" {
		return false
	}
	_, ok := ownerRoles[r]
	return ok
}
