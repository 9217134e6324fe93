package domain

// DecisionPass is the upstream service's canonical pass token. The decision
// token is authoritative over legacy score-based inference when present.
const DecisionPass = "Pass"

// LegacyScoreThreshold is the fraud score below which a server-listed record
// lacking a decision token counts as verified.
const LegacyScoreThreshold = 30

// VerificationTruth is the tagged union resolving the two coexisting
// pass/fail derivation rules: fresh records carry an upstream decision token,
// historical records may only carry a fraud score. Construct via FreshTruth or
// LegacyTruth at the ingestion boundary and resolve to a boolean exactly once.
type VerificationTruth struct {
	decision string
	score    int
	legacy   bool
}

// FreshTruth wraps an upstream decision token.
func FreshTruth(decision string) VerificationTruth {
	return VerificationTruth{decision: decision}
}

// LegacyTruth wraps a historical fraud score for records with no decision.
func LegacyTruth(score int) VerificationTruth {
	return VerificationTruth{score: score, legacy: true}
}

// Verified resolves the union: decision token when present, legacy score
// threshold otherwise.
func (t VerificationTruth) Verified() bool {
	if t.legacy {
		return t.score < LegacyScoreThreshold
	}
	return t.decision == DecisionPass
}

// IsLegacy reports whether the score threshold rule applied.
func (t VerificationTruth) IsLegacy() bool { return t.legacy }
