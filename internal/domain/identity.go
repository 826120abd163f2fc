package domain

// IdentityKind discriminates anonymous shoppers from signed-in users.
type IdentityKind string

const (
	IdentityAnonymous     IdentityKind = "anonymous"
	IdentityAuthenticated IdentityKind = "authenticated"
)

// Identity is the caller's shopping identity for the current request.
// Key is the cart ownerKey: the user ID for authenticated callers, or a
// session-scoped random token for anonymous ones. Anonymous keys are minted
// per browser session and never shared between sessions.
type Identity struct {
	Kind IdentityKind
	Key  string
}

// Anonymous builds an anonymous identity from a session-scoped token.
func Anonymous(key string) Identity {
	return Identity{Kind: IdentityAnonymous, Key: key}
}

// Authenticated builds an identity for a signed-in user.
func Authenticated(userID string) Identity {
	return Identity{Kind: IdentityAuthenticated, Key: userID}
}

// IsAuthenticated reports whether the identity belongs to a signed-in user.
func (i Identity) IsAuthenticated() bool {
	return i.Kind == IdentityAuthenticated
}
