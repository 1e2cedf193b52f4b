package infra

// google.go — wrapper around the Google ID token verifier.
// The identity provider is an external collaborator: everything behind this
// boundary (cert fetching, signature checks) belongs to the library.

import (
	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// GoogleClaims are the identity fields extracted from a verified ID token.
type GoogleClaims struct {
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifies Google ID tokens against a single OAuth client ID.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify checks the token's signature, expiry, and audience, then returns
// the identity claims.
func (v *GoogleVerifier) Verify(idToken string) (*GoogleClaims, error) {
	verifier := googleAuthIDTokenVerifier.Verifier{}
	if err := verifier.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return nil, err
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}

	name := claimSet.Name
	if name == "" {
		name = claimSet.Email
	}
	return &GoogleClaims{
		Email:   claimSet.Email,
		Name:    name,
		Picture: claimSet.Picture,
	}, nil
}
