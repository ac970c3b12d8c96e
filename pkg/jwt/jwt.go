package jwt

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"inventorywise/pkg/config"
	apperrors "inventorywise/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims JWT声明
// 主题为用户ID的字符串形式，访问令牌与刷新令牌的声明结构完全一致，
// 仅有效期不同（访问2小时，刷新7天）。
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey       string
	accessDuration  time.Duration
	refreshDuration time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, accessDuration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       secretKey,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// GenerateAccessToken 生成访问令牌
func (manager *JWTManager) GenerateAccessToken(userID uint) (string, error) {
	return manager.generate(userID, manager.accessDuration)
}

// GenerateRefreshToken 生成刷新令牌
func (manager *JWTManager) GenerateRefreshToken(userID uint) (string, error) {
	return manager.generate(userID, manager.refreshDuration)
}

func (manager *JWTManager) generate(userID uint, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			Issuer:    "InventoryWise",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken 验证令牌并返回主题中的用户ID
// 签名或声明损坏返回ErrTokenInvalid，过期返回ErrTokenExpired。
func (manager *JWTManager) VerifyToken(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// 验证签名方法
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperrors.ErrTokenInvalid
			}
			return []byte(manager.secretKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.ErrTokenExpired
		}
		return 0, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return 0, apperrors.ErrTokenInvalid
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, apperrors.ErrTokenInvalid
	}

	return uint(userID), nil
}

// GetAccessDuration 获取访问令牌有效期
func (manager *JWTManager) GetAccessDuration() time.Duration {
	return manager.accessDuration
}

// GetRefreshDuration 获取刷新令牌有效期
func (manager *JWTManager) GetRefreshDuration() time.Duration {
	return manager.refreshDuration
}

// 单例实现
var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager 获取全局JWT管理器实例
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		accessDuration, err := time.ParseDuration(cfg.JWT.AccessDuration)
		if err != nil {
			accessDuration = 2 * time.Hour
		}
		refreshDuration, err := time.ParseDuration(cfg.JWT.RefreshDuration)
		if err != nil {
			refreshDuration = 7 * 24 * time.Hour
		}
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, accessDuration, refreshDuration)
	})
	return defaultManager
}
