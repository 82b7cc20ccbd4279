// Package pgtest runs integration tests against a real PostgreSQL.
//
// With both URLs set, tests use that database:
//
//	TEST_DATABASE_URL        application role (subject to RLS)
//	TEST_ADMIN_DATABASE_URL  RLS-bypassing role (migrations, fixtures, truncation)
//
// Without TEST_DATABASE_URL, each test binary starts its own embedded
// server instead. Other knobs:
//
//	TEST_EMBEDDED_POSTGRES   "off" skips integration tests rather than embedding
//	TEST_REPEAT_COUNT        optional, repeats every body (default 1)
//
// The truncate strategy clears shared tables, so against an external
// database run integration tests with -p 1.
package pgtest

import (
	"os"
	"strconv"

	"tenantpress/internal/core/tenant"
)

// Tenants every test database carries.
var (
	MainTenant  = tenant.MustParseID("E424CAD0-38C7-4A15-B06A-8F4FFC680EE8")
	OtherTenant = tenant.MustParseID("34B5D628-81EC-4EFE-B57C-E143E114E1D1")
)

// Backend names, used as subtest labels by Harness.Each.
const (
	BackendExternal = "external"
	BackendEmbedded = "embedded"
)

// Env is the integration test configuration.
type Env struct {
	Backend  string
	AppURL   string
	AdminURL string
	Repeat   int
}

// Embedded reports whether the harness must start its own server.
func (e Env) Embedded() bool { return e.Backend == BackendEmbedded }

// LoadEnv reads the environment. ok is false when integration tests
// should be skipped: the external database is half configured, or
// embedding is switched off.
func LoadEnv() (env Env, ok bool) {
	env = Env{
		Backend:  BackendExternal,
		AppURL:   os.Getenv("TEST_DATABASE_URL"),
		AdminURL: os.Getenv("TEST_ADMIN_DATABASE_URL"),
		Repeat:   1,
	}
	if n, err := strconv.Atoi(os.Getenv("TEST_REPEAT_COUNT")); err == nil && n > 0 {
		env.Repeat = n
	}
	if env.AppURL == "" {
		env.Backend = BackendEmbedded
		env.AdminURL = ""
		return env, os.Getenv("TEST_EMBEDDED_POSTGRES") != "off"
	}
	return env, env.AdminURL != ""
}
