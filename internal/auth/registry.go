// Package auth holds the static project registry and the session gate.
//
// Credentials are fixed at deploy time: one login per project, with the
// password provisioned through a {PROJECT}_PASSWORD environment variable and
// compared as a sha256 digest. There is no lockout and no rotation.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"strings"
)

// Project is one organizational sub-unit allowed to submit expenses.
type Project struct {
	Login        string
	Name         string // display name, used as the ledger partition key
	Color        string // hex color for the project's dashboard cards
	passwordHash string // hex-encoded sha256 digest
}

// Registry is the immutable set of configured projects, keyed by login.
type Registry struct {
	byLogin map[string]*Project
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// defaultProjects lists the fixed sub-projects with their display colors.
var defaultProjects = []Project{
	{Login: "oikos_conference", Name: "oikos Conference", Color: "#4386e8"},
	{Login: "oikos_sustainability_week", Name: "Sustainability Week", Color: "#98CE6B"},
	{Login: "oikos_action_days", Name: "Action Days", Color: "#DDD5C0"},
	{Login: "oikos_curriculum_change", Name: "Curriculum Change", Color: "#EFC9F3"},
	{Login: "oikos_un-dress", Name: "UN-DRESS", Color: "#A8A8A8"},
	{Login: "oikos_changehub", Name: "ChangeHub", Color: "#E7B789"},
	{Login: "oikos_solar", Name: "oikos Solar", Color: "#7686F7"},
	{Login: "oikos_catalyst", Name: "oikos Catalyst", Color: "#82CBF9"},
	{Login: "oikos_climate_neutral_events", Name: "Climate Neutral Events", Color: "#759272"},
	{Login: "oikos_consulting", Name: "oikos Consulting", Color: "#c75f58"},
	{Login: "oikos_sustainable_finance", Name: "Sustainable Finance", Color: "#DA873C"},
	{Login: "oikos_oismak", Name: "Oismak", Color: "#BCC9DD"},
}

// NewRegistry builds a registry from explicit project/password pairs.
// Used by tests; production loads via NewRegistryFromEnv.
func NewRegistry(projects []Project, passwords map[string]string) *Registry {
	r := &Registry{byLogin: make(map[string]*Project, len(projects))}
	for _, p := range projects {
		pw, ok := passwords[p.Login]
		if !ok {
			continue
		}
		p.passwordHash = HashPassword(pw)
		cp := p
		r.byLogin[p.Login] = &cp
	}
	return r
}

// NewRegistryFromEnv loads the default project set, taking each password
// from its {PROJECT}_PASSWORD environment variable. Projects without a
// provisioned password are left out of the registry and cannot log in.
func NewRegistryFromEnv() *Registry {
	r := &Registry{byLogin: make(map[string]*Project, len(defaultProjects))}
	for _, p := range defaultProjects {
		pw, ok := os.LookupEnv(PasswordEnvVar(p.Login))
		if !ok || pw == "" {
			slog.Warn("Project password not provisioned, login disabled",
				"login", p.Login, "env", PasswordEnvVar(p.Login))
			continue
		}
		p.passwordHash = HashPassword(pw)
		cp := p
		r.byLogin[p.Login] = &cp
	}
	return r
}

// PasswordEnvVar maps a login name to its password environment variable,
// e.g. "oikos_un-dress" -> "OIKOS_UN_DRESS_PASSWORD".
func PasswordEnvVar(login string) string {
	name := strings.ToUpper(strings.ReplaceAll(login, "-", "_"))
	return name + "_PASSWORD"
}

// HashPassword returns the hex sha256 digest used for credential comparison.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Authenticate validates a login/password pair and resolves the project.
// Failures are indistinguishable: the caller learns nothing about which
// field was wrong.
func (r *Registry) Authenticate(username, password string) (*Project, error) {
	p, ok := r.byLogin[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if p.passwordHash != HashPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// Lookup resolves a login name without checking credentials. Used when
// restoring an already-authenticated session.
func (r *Registry) Lookup(login string) (*Project, bool) {
	p, ok := r.byLogin[login]
	return p, ok
}

// Len returns the number of loginable projects.
func (r *Registry) Len() int {
	return len(r.byLogin)
}
