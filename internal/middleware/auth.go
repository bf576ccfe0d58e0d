package middleware

import (
	"errors"
	"net/http"
	"strings"

	"NWord_Counter/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const ContextClientIDKey = "client_id"

// TokenParser pkg.TokenManager 满足此接口
type TokenParser interface {
	Parse(tokenStr string) (*pkg.Claims, error)
}

func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, pkg.ErrTokenExpired) {
				msg = "token expired"
			}
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("rejected gateway token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msg})
			return
		}

		// 注入 client_id
		c.Set(ContextClientIDKey, claims.ClientID)
		c.Next()
	}
}

// ClientID 当前请求的客户端
func ClientID(c *gin.Context) string {
	return c.GetString(ContextClientIDKey)
}
