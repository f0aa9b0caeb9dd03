package domain

import "testing"

func TestClassificationVerdict_IsBlocked(t *testing.T) {
	v1 := ClassificationVerdict{Blocked: true}
	if !v1.IsBlocked() {
		t.Fatalf("expected true")
	}
	v2 := ClassificationVerdict{Blocked: false}
	if v2.IsBlocked() {
		t.Fatalf("expected false")
	}
}

func TestAllowed(t *testing.T) {
	v := Allowed()
	if v.Blocked {
		t.Fatalf("allowed verdict should not be blocked")
	}
	if v.MatchedReason != "" || v.Source != "" {
		t.Fatalf("allowed verdict should have empty fields")
	}
}

func TestBlockedBy(t *testing.T) {
	f, err := NewKeywordFragment("casino", "builtin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := BlockedBy(f)
	if !v.Blocked || v.MatchedReason != "casino" || v.Kind != FragmentKeyword || v.Source != "builtin" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if DecisionFor(v) != PolicyDeny {
		t.Fatalf("blocked verdict should deny")
	}
	if DecisionFor(Allowed()) != PolicyAllow {
		t.Fatalf("allowed verdict should allow")
	}
}
