package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	subjectAdmin  = "admin"
	subjectUpload = "upload"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongSubject = errors.New("token subject mismatch")
)

// Claims 管理员会话令牌
type Claims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UploadClaims 直传完成令牌，携带上传时签发的不透明载荷
type UploadClaims struct {
	Pathname    string `json:"pathname"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Payload     string `json:"payload,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken 生成管理员令牌
func GenerateToken(adminID int64, username, secret string, expireHours int) (string, error) {
	now := time.Now()
	claims := Claims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectAdmin,
			ID:        strconv.FormatInt(now.UnixNano(), 36),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken 解析管理员令牌
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.Subject != subjectAdmin {
		return nil, ErrWrongSubject
	}
	return claims, nil
}

// GenerateUploadToken 生成直传令牌
func GenerateUploadToken(claims UploadClaims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.Subject = subjectUpload
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseUploadToken 解析直传令牌
func ParseUploadToken(tokenString, secret string) (*UploadClaims, error) {
	claims := &UploadClaims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.Subject != subjectUpload {
		return nil, ErrWrongSubject
	}
	return claims, nil
}

func parse(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
