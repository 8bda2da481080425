// file: internals/helpers/auth/caller.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals written by the JWT middleware.
const (
	LocUserID   = "user_id"
	LocRawToken = "raw_token"
	LocClaims   = "jwt_claims"
)

// Caller is the authenticated identity of one request. It is built per
// request and passed explicitly into services.
type Caller struct {
	UserID uuid.UUID
	Token  string
}

// CallerFromCtx returns 401 when the request carries no valid identity.
func CallerFromCtx(c *fiber.Ctx) (Caller, error) {
	uid, err := userIDFromLocals(c.Locals(LocUserID))
	if err != nil {
		return Caller{}, err
	}
	tok, _ := c.Locals(LocRawToken).(string)
	return Caller{UserID: uid, Token: tok}, nil
}

func userIDFromLocals(v any) (uuid.UUID, error) {
	unauthorized := fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, unauthorized
		}
		return t, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil || id == uuid.Nil {
			return uuid.Nil, unauthorized
		}
		return id, nil
	default:
		return uuid.Nil, unauthorized
	}
}

// ParseUUIDParam reads a path param as UUID (400 when malformed).
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// ParseUUIDQuery reads an optional query UUID; empty yields nil.
func ParseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &id, nil
}
