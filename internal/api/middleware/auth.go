package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// Context keys set by JWTAuth.
const (
	KeyAccountID   = "account_id"
	KeyUsername    = "username"
	KeyIsStaff     = "is_staff"
	KeyIsSuperuser = "is_superuser"
	KeyClaims      = "claims"
)

// RevocationChecker reports revoked token ids. The Redis client satisfies it.
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AccountLookup loads the stored account. The account repository satisfies it.
type AccountLookup interface {
	GetByID(ctx context.Context, id uint) (*model.Account, error)
}

// JWTAuth validates the Bearer access token and stores the identity in the
// context. A nil checker skips revocation checks. With accounts set, staff
// and superuser rights come from the stored account rather than the token,
// so a privilege change applies to tokens already issued.
func JWTAuth(jwtMgr *jwt.Manager, revoked RevocationChecker, accounts AccountLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 40100, "authentication required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, 40100, "malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 40102, "invalid or expired token")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 40102, "invalid token type")
			c.Abort()
			return
		}

		if revoked != nil {
			blacklisted, err := revoked.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open; tokens are short lived
				logger.Warn("token blacklist unavailable", zap.Error(err))
			} else if blacklisted {
				response.Unauthorized(c, 40102, "token has been revoked")
				c.Abort()
				return
			}
		}

		staff, superuser := claims.IsStaff, claims.IsSuperuser
		if accounts != nil {
			account, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
			switch {
			case repository.IsNotFound(err):
				response.Unauthorized(c, 40102, "account no longer exists")
				c.Abort()
				return
			case err != nil:
				logger.Error("load account for token", zap.Uint("account_id", claims.AccountID), zap.Error(err))
				response.InternalError(c)
				c.Abort()
				return
			case !account.IsActive:
				response.Unauthorized(c, 40103, "this account is inactive")
				c.Abort()
				return
			}
			staff, superuser = account.IsStaff, account.IsSuperuser
		}

		c.Set(KeyAccountID, claims.AccountID)
		c.Set(KeyUsername, claims.Username)
		c.Set(KeyIsStaff, staff)
		c.Set(KeyIsSuperuser, superuser)
		c.Set(KeyClaims, claims)

		c.Next()
	}
}

// RequireStaff lets staff and superusers through.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(KeyIsStaff) && !c.GetBool(KeyIsSuperuser) {
			response.Forbidden(c, 40300, "staff only")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperuser lets superusers through.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(KeyIsSuperuser) {
			response.Forbidden(c, 40300, "superuser only")
			c.Abort()
			return
		}
		c.Next()
	}
}
