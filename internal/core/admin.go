package core

// Authority is the immutable admin roster plus the shared elevation
// password. Loaded once at startup, never mutated, so it needs no lock.
type Authority struct {
	admins   map[string]struct{}
	password string
}

// NewAuthority builds the authority from the configured roster.
func NewAuthority(admins []string, password string) *Authority {
	a := &Authority{
		admins:   make(map[string]struct{}, len(admins)),
		password: password,
	}
	for _, name := range admins {
		a.admins[name] = struct{}{}
	}
	return a
}

// IsAdmin reports whether the username may attempt elevation.
func (a *Authority) IsAdmin(name string) bool {
	_, ok := a.admins[name]
	return ok
}

// CheckPassword compares the shared password. Plaintext equality with no
// rate limiting, matching the wire protocol this server speaks.
func (a *Authority) CheckPassword(password string) bool {
	return password == a.password
}
