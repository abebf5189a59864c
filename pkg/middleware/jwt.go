package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer は発行するトークンのiss。
const Issuer = "portfolio-content"

// ScopeSync はミラーの手動同期を許可するスコープ。
const ScopeSync = "mirror:sync"

// JWTClaims は内部エンドポイント用トークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// Scopes は許可された操作。
	Scopes []string `json:"scopes"`
}

// HasScope はスコープを持つかどうかを返す。
func (c *JWTClaims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// contextKeySubject はトークンの主体を保持するGinコンテキストのキー。
const contextKeySubject = "jwt_subject"

// GenerateJWT は主体とスコープからHS256で署名したトークンを生成する。
// studioctlの token サブコマンドが運用者向けに発行する。
func GenerateJWT(secret, subject string, scopes []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWTシークレットが未設定です")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("トークンの有効期間は正の値である必要があります: %s", ttl)
	}
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		Scopes: scopes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークンを検証してクレームを返す。署名方式はHS256のみ受け付ける。
func ParseJWT(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("トークンが無効です")
	}
	return claims, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// requiredScopeが空でない場合、そのスコープを持たないトークンは403で拒否する。
// 検証に成功した場合、コンテキストにトークンの主体を設定する。
func JWTAuth(secret, requiredScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "認証が構成されていません",
			})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}
		if requiredScope != "" && !claims.HasScope(requiredScope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "この操作を行う権限がありません",
			})
			return
		}

		c.Set(contextKeySubject, claims.Subject)
		c.Next()
	}
}

// GetSubject はGinコンテキストからトークンの主体を取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetSubject(c *gin.Context) string {
	subject, _ := c.Get(contextKeySubject)
	if s, ok := subject.(string); ok {
		return s
	}
	return ""
}
