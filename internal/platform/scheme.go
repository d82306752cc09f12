package platform

import "os"

// SchemeProbe answers the OS-level color-scheme query.
type SchemeProbe interface {
	PrefersDark() bool
}

// EnvSchemeProbe reads the preferred scheme from the COLOR_SCHEME environment
// variable ("dark" or "light"); anything else reads as light.
type EnvSchemeProbe struct{}

func (EnvSchemeProbe) PrefersDark() bool {
	return os.Getenv("COLOR_SCHEME") == "dark"
}

// FixedSchemeProbe always reports the configured answer. Used in tests.
type FixedSchemeProbe bool

func (p FixedSchemeProbe) PrefersDark() bool {
	return bool(p)
}
