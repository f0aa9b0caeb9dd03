package domain

// ClassificationVerdict is the outcome of evaluating a candidate address
// against the blocklist fragments. Pure value type, no external dependencies.
type ClassificationVerdict struct {
	Blocked       bool         // true if any fragment matched
	MatchedReason string       // the first fragment that matched, empty when allowed
	Kind          FragmentKind // which fragment set matched
	Source        string       // optional: where the matched fragment came from
}

// IsBlocked is a convenience accessor.
func (v ClassificationVerdict) IsBlocked() bool { return v.Blocked }

// Allowed returns a not-blocked verdict.
func Allowed() ClassificationVerdict { return ClassificationVerdict{Blocked: false} }

// BlockedBy returns a blocked verdict attributed to f.
func BlockedBy(f Fragment) ClassificationVerdict {
	return ClassificationVerdict{Blocked: true, MatchedReason: f.Text, Kind: f.Kind, Source: f.Source}
}
