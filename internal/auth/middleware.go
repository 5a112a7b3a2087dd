package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// Identity 已认证用户身份
// 解析后显式传入每个工作流操作,处理链不读取全局状态
type Identity struct {
	ID       string
	Email    string
	FullName string
	Role     workflow.Role
}

// Actor 转换为状态机的 Actor
func (i Identity) Actor() workflow.Actor {
	return workflow.Actor{ID: i.ID, Role: i.Role}
}

const identityKey = "identity"

// Middleware JWT 认证中间件
// 验证 Bearer token 并解析为一个活跃账号,失败返回 401
func Middleware(tokens *TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing authorization header",
			})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "invalid token",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}

		// token 有效还不够,账号必须仍然存在且活跃
		user, err := users.FindActiveByID(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "account not found or inactive",
			})
			c.Abort()
			return
		}

		c.Set(identityKey, Identity{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     workflow.Role(user.Position),
		})

		c.Next()
	}
}

// GetIdentity 从请求上下文获取已认证身份
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequireOperation 角色策略中间件
// 仅放行角色允许集中包含该操作的请求
func RequireOperation(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "authentication required",
			})
			c.Abort()
			return
		}

		if !Allowed(identity.Role, op) {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
