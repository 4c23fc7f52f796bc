package session

import (
	"context"
	"crypto/subtle"
)

// Authenticator resolves connection codes to sessions. The code is a
// public discovery handle; the token is the sole capability. Lookup is
// always by code, the token is only ever compared.
type Authenticator struct {
	store Store
}

func NewAuthenticator(store Store) *Authenticator {
	return &Authenticator{store: store}
}

// Resolve looks a session up by code only. This is the viewer tier:
// read-only operations require no proof of presenter identity.
func (a *Authenticator) Resolve(ctx context.Context, code string) (*Info, error) {
	info, err := a.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrBadSession
	}
	return info, nil
}

// ResolveAuthenticated resolves by code and requires the supplied token
// to match the stored one. Every state-mutating operation goes through
// here. A missing code and a wrong token both return ErrBadSession.
func (a *Authenticator) ResolveAuthenticated(ctx context.Context, code, token string) (*Info, error) {
	info, err := a.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(info.Token), []byte(token)) != 1 {
		return nil, ErrBadSession
	}
	return info, nil
}
