package auth

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoCredential is returned when there is no usable stored token.
var ErrNoCredential = errors.New("auth: no credential")

const tokenKey = "access_token"

// Store persists session values. *cache.DB implements it.
type Store interface {
	GetSession(key string) (string, error)
	PutSession(key, value string) error
	DeleteSession(key string) error
}

// Static is a fixed credential, e.g. from PANELIST_TOKEN.
type Static string

// Credential implements api.CredentialProvider.
func (s Static) Credential() (string, bool) {
	return string(s), s != ""
}

// StoreProvider serves the token saved by Session.Login.
type StoreProvider struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewStoreProvider creates a provider over store.
func NewStoreProvider(store Store, logger *zap.Logger) *StoreProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreProvider{store: store, logger: logger, now: time.Now}
}

// Credential implements api.CredentialProvider. Expired tokens are withheld
// so the server sees an anonymous request and answers 401.
func (p *StoreProvider) Credential() (string, bool) {
	token, err := p.Token()
	if err != nil {
		return "", false
	}
	return token, true
}

// Token returns the stored token, or ErrNoCredential when there is none or
// it has expired. Tokens that are not JWTs are treated as opaque and never
// expire on the client side.
func (p *StoreProvider) Token() (string, error) {
	token, err := p.store.GetSession(tokenKey)
	if err != nil || token == "" {
		return "", ErrNoCredential
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return token, nil
	}
	if claims.Expired(p.now()) {
		p.logger.Debug("stored token expired", zap.Time("expires", claims.Expires))
		return "", ErrNoCredential
	}
	return token, nil
}

// Claims returns the claims of the stored token.
func (p *StoreProvider) Claims() (Claims, error) {
	token, err := p.Token()
	if err != nil {
		return Claims{}, err
	}
	return ParseClaims(token)
}
