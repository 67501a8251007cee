package model

// Claim is a single factual assertion pulled from the text with a verdict label
type Claim struct {
	Claim    string  `json:"claim"`
	Verdict  Verdict `json:"verdict"`
	Evidence string  `json:"evidence"`
}

// Verdict labels a claim
type Verdict string

const (
	VerdictTrue       Verdict = "TRUE"
	VerdictMisleading Verdict = "MISLEADING"
	VerdictFalse      Verdict = "FALSE"
	VerdictUnverified Verdict = "UNVERIFIED"
)

// ParseVerdict normalizes a verdict label, mapping anything unknown to UNVERIFIED
func ParseVerdict(s string) Verdict {
	switch Verdict(s) {
	case VerdictTrue, VerdictMisleading, VerdictFalse, VerdictUnverified:
		return Verdict(s)
	}
	return VerdictUnverified
}
