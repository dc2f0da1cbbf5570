package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/api/middleware"
	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// MustGetActor builds the caller identity from the values JWTAuth stored.
// It writes a 401 and returns false when they are missing.
func MustGetActor(c *gin.Context) (authz.Actor, bool) {
	v, exists := c.Get(middleware.KeyAccountID)
	if !exists {
		response.Unauthorized(c, 40100, "authentication required")
		return authz.Actor{}, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 40100, "authentication required")
		return authz.Actor{}, false
	}
	return authz.Actor{
		AccountID: id,
		Staff:     c.GetBool(middleware.KeyIsStaff),
		Superuser: c.GetBool(middleware.KeyIsSuperuser),
	}, true
}

// MustGetClaims returns the parsed access token.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.KeyClaims)
	claims, ok := v.(*jwt.Claims)
	if !exists || !ok {
		response.Unauthorized(c, 40100, "authentication required")
		return nil, false
	}
	return claims, true
}

// MustGetID parses a positive numeric path parameter. It writes a 400 when
// the value is malformed.
func MustGetID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.ValidationFailed(c, 40000, "invalid request", map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// bindFailed reports a binding error with per-field messages.
func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonName(fe)] = fieldMessage(fe)
		}
		response.ValidationFailed(c, 40000, "invalid request", fields)
		return
	}
	response.BadRequest(c, 40000, "malformed request body or query")
}

// jsonName turns the struct field name into its snake_case wire name.
func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (name[i-1] < 'A' || name[i-1] > 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// fail writes the envelope for err, logging anything unclassified.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	if response.FromError(c, err) {
		return
	}
	logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err))
	response.InternalError(c)
}
