package sqlguard

// ResolveRowLimit normalizes a caller-requested row cap against the policy
// ceiling. Zero or negative requests (including "not provided") resolve to
// the ceiling; anything above the ceiling clamps to it. Always returns a
// positive value when policy.MaxRows is positive.
func ResolveRowLimit(requested int, policy Policy) int {
	if requested <= 0 || requested > policy.MaxRows {
		return policy.MaxRows
	}
	return requested
}
