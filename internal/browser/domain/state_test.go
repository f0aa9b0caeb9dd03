package domain

import "testing"

func TestStartPage(t *testing.T) {
	s := StartPage()
	if !s.OnStartPage || s.CurrentAddress != "" || s.IsLoading || s.CanGoBack || s.CanGoForward {
		t.Fatalf("unexpected start page state: %+v", s)
	}
	if !s.Consistent() {
		t.Fatalf("start page must be consistent")
	}
	if s.Phase() != PhaseOnStartPage {
		t.Fatalf("Phase = %v, want on_start_page", s.Phase())
	}
}

func TestNavigationState_Phase(t *testing.T) {
	cases := []struct {
		name  string
		state NavigationState
		want  Phase
	}{
		{"start page", NavigationState{OnStartPage: true}, PhaseOnStartPage},
		{"pending from start page", NavigationState{OnStartPage: true, PendingAddress: "https://a.example"}, PhaseLoading},
		{"loading", NavigationState{CurrentAddress: "https://a.example", IsLoading: true}, PhaseLoading},
		{"idle", NavigationState{CurrentAddress: "https://a.example"}, PhaseIdle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Phase(); got != tc.want {
				t.Fatalf("Phase = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNavigationState_Consistent(t *testing.T) {
	if (NavigationState{CurrentAddress: "https://a.example", OnStartPage: true}).Consistent() {
		t.Fatalf("address with start page flag must be inconsistent")
	}
	if (NavigationState{}).Consistent() {
		t.Fatalf("no address without start page flag must be inconsistent")
	}
}

func TestPhase_String(t *testing.T) {
	if PhaseIdle.String() != "idle" || PhaseLoading.String() != "loading" || PhaseOnStartPage.String() != "on_start_page" {
		t.Fatalf("unexpected phase names")
	}
	if Phase(9).String() != "unknown" {
		t.Fatalf("unexpected fallback")
	}
}
