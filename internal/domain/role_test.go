package domain

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{raw: "competitor", want: RoleCompetitor, ok: true},
		{raw: "staff-judge", want: RoleJudge, ok: true},
		{raw: "staff-scrambler", want: RoleScrambler, ok: true},
		{raw: "staff-runner", want: RoleRunner, ok: true},
		{raw: "staff-stagelead", want: RoleLead, ok: true},
		{raw: "stagelead", want: RoleLead, ok: true},
		{raw: "staff-delegate", want: RoleDelegate, ok: true},
		{raw: " Staff-Judge ", want: RoleJudge, ok: true},
		{raw: "staff-other", ok: false},
		{raw: "announcer", ok: false},
		{raw: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := NormalizeRole(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("NormalizeRole(%q) = (%q, %t), want (%q, %t)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleInitialAndHelper(t *testing.T) {
	if RoleJudge.Initial() != "J" {
		t.Fatalf("unexpected initial %q", RoleJudge.Initial())
	}
	if RoleCompetitor.IsHelper() {
		t.Fatal("expected competitor not to be a helper")
	}
	if !RoleScrambler.IsHelper() {
		t.Fatal("expected scrambler to be a helper")
	}
	if Role("announcer").IsHelper() {
		t.Fatal("expected unknown role not to be a helper")
	}
}
