package domain

// PolicyQuery is the engine asking whether it may proceed to Address.
// It fires for every requested navigation, including redirects and in-page
// links, and for sub-resources when the engine gates them.
type PolicyQuery struct {
	Address     string
	Subresource bool
}

// PolicyDecision is the answer to a PolicyQuery.
type PolicyDecision uint8

const (
	PolicyAllow PolicyDecision = iota
	PolicyDeny
)

func (d PolicyDecision) String() string {
	if d == PolicyDeny {
		return "deny"
	}
	return "allow"
}

// DecisionFor maps a verdict onto the policy answer.
func DecisionFor(v ClassificationVerdict) PolicyDecision {
	if v.Blocked {
		return PolicyDeny
	}
	return PolicyAllow
}
