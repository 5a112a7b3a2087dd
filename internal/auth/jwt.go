package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims PropertyFlow JWT 声明
type Claims struct {
	Email    string `json:"email"`
	Position string `json:"position"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// TokenManager JWT 签发与验证器
// 使用 HS256 本地签发,不依赖外部身份服务
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager 创建 TokenManager
func NewTokenManager(secret string, expiryHours int) *TokenManager {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	return &TokenManager{
		secret: []byte(secret),
		expiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Issue 为用户签发带过期时间的 token
func (m *TokenManager) Issue(userID, email, position, fullName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:    email,
		Position: position,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate 验证 token 并返回声明
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject in token")
	}
	return claims, nil
}
