package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/domain"
	"sevaportal/internal/services"
)

const (
	citizenIDKey = "citizen_id"
	adminCtxKey  = "admin_ctx"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      message,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}

// CitizenAuth requires a valid citizen token and stores the citizen id on
// the context.
func CitizenAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil || claims.Role != "CITIZEN" {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(citizenIDKey, claims.Subject)
		c.Next()
	}
}

// AdminAuth requires a valid admin token and stores the admin scope on
// the context.
func AdminAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		role := domain.AdminRole(claims.Role)
		if role != domain.RoleSuperAdmin && role != domain.RoleDeptAdmin {
			abortUnauthorized(c, "admin token required")
			return
		}
		c.Set(adminCtxKey, domain.AdminContext{
			AdminID: claims.Subject,
			Role:    role,
			DeptID:  claims.DeptID,
		})
		c.Next()
	}
}

// RequireSuperAdmin must run after AdminAuth.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := GetAdmin(c)
		if !ok || admin.Role != domain.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "super admin access required",
				"code":       "forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetCitizenID returns the authenticated citizen's id.
func GetCitizenID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(citizenIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetAdmin returns the authenticated admin's scope.
func GetAdmin(c *gin.Context) (domain.AdminContext, bool) {
	v, ok := c.Get(adminCtxKey)
	if !ok {
		return domain.AdminContext{}, false
	}
	admin, ok := v.(domain.AdminContext)
	return admin, ok
}
