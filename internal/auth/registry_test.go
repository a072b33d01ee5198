package auth

import (
	"errors"
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry(
		[]Project{
			{Login: "oikos_solar", Name: "oikos Solar", Color: "#7686F7"},
			{Login: "oikos_catalyst", Name: "oikos Catalyst", Color: "#82CBF9"},
		},
		map[string]string{
			"oikos_solar":    "sunshine",
			"oikos_catalyst": "spark",
		},
	)
}

func TestAuthenticate(t *testing.T) {
	r := testRegistry()

	p, err := r.Authenticate("oikos_solar", "sunshine")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if p.Name != "oikos Solar" {
		t.Fatalf("wrong project resolved: %q", p.Name)
	}

	cases := []struct{ user, pass string }{
		{"oikos_solar", "wrong"},
		{"nobody", "sunshine"},
		{"", ""},
		{"oikos_catalyst", "sunshine"}, // right password, wrong project
	}
	for _, tc := range cases {
		if _, err := r.Authenticate(tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("user=%q: expected ErrInvalidCredentials, got %v", tc.user, err)
		}
	}
}

func TestRegistrySkipsUnprovisioned(t *testing.T) {
	r := NewRegistry(
		[]Project{
			{Login: "oikos_solar", Name: "oikos Solar"},
			{Login: "oikos_oismak", Name: "Oismak"},
		},
		map[string]string{"oikos_solar": "sunshine"},
	)
	if r.Len() != 1 {
		t.Fatalf("expected 1 loginable project, got %d", r.Len())
	}
	if _, ok := r.Lookup("oikos_oismak"); ok {
		t.Fatalf("unprovisioned project must not be loginable")
	}
}

func TestPasswordEnvVar(t *testing.T) {
	cases := map[string]string{
		"oikos_solar":    "OIKOS_SOLAR_PASSWORD",
		"oikos_un-dress": "OIKOS_UN_DRESS_PASSWORD",
	}
	for login, want := range cases {
		if got := PasswordEnvVar(login); got != want {
			t.Fatalf("%q: expected %q, got %q", login, want, got)
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	r := testRegistry()
	m := NewSessionManager("test-secret")

	p, _ := r.Lookup("oikos_solar")
	token, err := m.Issue(p)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Login != "oikos_solar" {
		t.Fatalf("expected login round trip, got %q", claims.Login)
	}
	if claims.ID == "" {
		t.Fatalf("session token must carry an id")
	}

	if _, err := m.Verify(token + "x"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("tampered token must fail, got %v", err)
	}
	other := NewSessionManager("other-secret")
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("token signed with another secret must fail, got %v", err)
	}
}
