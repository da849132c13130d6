package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fieldops/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultStateTTL bounds how long a sign-in round trip through the identity
// provider may take.
const DefaultStateTTL = 10 * time.Minute

var (
	ErrStateInvalid  = errors.New("jwtx: invalid login state")
	ErrStateMismatch = errors.New("jwtx: login state does not match callback")
	ErrKeyTooShort   = errors.New("jwtx: state key must be at least 32 bytes")
)

// StateClaims travel in the short-lived login state cookie. Nonce is also
// sent to the identity provider as the OAuth2 state parameter so the callback
// can be bound to the browser that started the login.
type StateClaims struct {
	jwt.RegisteredClaims

	Nonce string `json:"nonce"`
	Next  string `json:"next,omitempty"`
}

// StateSigner issues and verifies HS256 login state tokens.
type StateSigner struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewStateSigner(key []byte, issuer string, ttl time.Duration) (*StateSigner, error) {
	if len(key) < 32 {
		return nil, ErrKeyTooShort
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateSigner{key: key, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed state token carrying next and the nonce that must
// come back from the identity provider.
func (s *StateSigner) Issue(next string) (token string, nonce string, err error) {
	nonce, err = cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", "", err
	}

	now := s.now().UTC()
	claims := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Nonce: nonce,
		Next:  next,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", "", fmt.Errorf("sign login state: %w", err)
	}
	return token, nonce, nil
}

// Verify checks signature, issuer and expiry of a state token.
func (s *StateSigner) Verify(token string) (StateClaims, error) {
	var claims StateClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return StateClaims{}, fmt.Errorf("%w: %v", ErrStateInvalid, err)
	}
	if claims.Nonce == "" {
		return StateClaims{}, ErrStateInvalid
	}
	return claims, nil
}

// VerifyCallback verifies token and that the state echoed by the identity
// provider matches the nonce it carries.
func (s *StateSigner) VerifyCallback(token, echoed string) (StateClaims, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return StateClaims{}, err
	}
	if !cryptox.EqualTokens(claims.Nonce, echoed) {
		return StateClaims{}, ErrStateMismatch
	}
	return claims, nil
}
