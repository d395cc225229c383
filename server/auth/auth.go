package auth

import (
	"fmt"
	"time"

	"github.com/Daskott/zantag/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const TOKEN_TTL = 24 * time.Hour

type ZantagTokenClaims struct {
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID *uint  `json:"organization_id,omitempty"`
	jwt.StandardClaims
}

// NewClaims returns claims for subject that expire after TOKEN_TTL.
func NewClaims(subject, name, role string, organizationID *uint) ZantagTokenClaims {
	now := time.Now()
	return ZantagTokenClaims{
		Name:           name,
		Role:           role,
		OrganizationID: organizationID,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TOKEN_TTL).Unix(),
		},
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims ZantagTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)
	token.Header["kid"] = keyPair.Kid

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*ZantagTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ZantagTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*ZantagTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to ZantagTokenClaims")
	}

	return tokenClaims, nil
}
