package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"
	"tgadmin/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the bearer token payload.
type Claims struct {
	Id     string `json:"id"`
	ChatId int64  `json:"chat_id"`
	jwt.RegisteredClaims
}

type Auth struct {
	secret          []byte
	ttl             time.Duration
	legacyPlaintext bool
	now             func() time.Time
}

// New creates the token and password service. With legacyPlaintext enabled,
// stored passwords that are not bcrypt hashes are compared as plain text.
func New(secret string, ttl time.Duration, legacyPlaintext bool) *Auth {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Auth{
		secret:          []byte(secret),
		ttl:             ttl,
		legacyPlaintext: legacyPlaintext,
		now:             time.Now,
	}
}

func (a *Auth) IssueToken(admin *entity.Admin) (string, error) {
	now := a.now()
	claims := Claims{
		Id:     admin.Id.Hex(),
		ChatId: admin.ChatId,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the identity the token carries.
func (a *Auth) ParseToken(token string) (*entity.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Id == "" {
		return nil, ErrInvalidToken
	}
	return &entity.Identity{
		AdminId: claims.Id,
		ChatId:  claims.ChatId,
	}, nil
}

// CheckPassword reports whether password matches the stored value and
// whether the stored value is a legacy plaintext password.
func (a *Auth) CheckPassword(stored, password string) (bool, bool) {
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
	}
	if !a.legacyPlaintext || stored == "" {
		return false, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, true
}

// Hash returns the bcrypt hash used to store password.
func (a *Auth) Hash(password string) (string, error) {
	return HashPassword(password)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func IsHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
