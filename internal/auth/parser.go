package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"report-service/internal/model"
)

type Claims struct {
	SessionID uuid.UUID       `json:"sid"`
	AdminID   uuid.UUID       `json:"sub"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      model.AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the request principal.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		AdminID: c.AdminID,
		Email:   c.Email,
		Name:    c.Name,
		Role:    c.Role,
	}
}

type Parser struct {
	secret []byte
	now    func() time.Time
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret), now: time.Now}
}

// Issue signs an HS256 access token for admin valid for ttl.
func (p *Parser) Issue(admin model.Admin, ttl time.Duration) (string, time.Time, error) {
	now := p.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		SessionID: uuid.New(),
		AdminID:   admin.ID,
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (p *Parser) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if !claims.Role.Valid() {
		return nil, errors.New("unknown role in token")
	}

	return claims, nil
}
