package gradebook

// AliasMap maps an identity as typed into a grade source to the canonical
// roster email. Sources collect typos and secondary addresses over a term;
// the map is maintained by course staff.
type AliasMap map[string]string

// Resolve returns the canonical identity for raw, or raw unchanged when no
// alias is recorded. Unknown identities deliberately pass through: the
// roster merge surfaces them as mismatches instead of this layer guessing.
func (m AliasMap) Resolve(raw string) string {
	if canonical, ok := m[raw]; ok {
		return canonical
	}
	return raw
}
