package ports

// Identity is the verified caller as asserted by the identity provider.
// TokenIdentifier has the form "<issuer>|<subject>".
type Identity struct {
	TokenIdentifier string
	Name            string
}

// Authenticated reports whether the identity carries a token identifier.
func (i Identity) Authenticated() bool {
	return i.TokenIdentifier != ""
}
