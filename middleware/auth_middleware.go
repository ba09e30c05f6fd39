package middleware

import (
	"fmt"
	"time"

	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const identityKey = "identity"

// Protected verifies the bearer token and stores the caller's identity in the
// request locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		SuccessHandler: storeIdentity,
		ErrorHandler:   jwtError,
	})
}

func storeIdentity(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT"})
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	id, err := identityFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	c.Locals(identityKey, id)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or malformed JWT"})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT"})
}

// RoleRequired lets the request through only for the listed roles.
func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentIdentity(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		for _, r := range roles {
			if id.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": fmt.Sprintf("Forbidden: %s access required", roles[0]),
		})
	}
}

func CurrentIdentity(c *fiber.Ctx) (authz.Identity, error) {
	id, ok := c.Locals(identityKey).(authz.Identity)
	if !ok {
		return authz.Identity{}, errors.New("Unauthenticated")
	}
	return id, nil
}

// IssueToken signs the claims Protected and ParseToken read back.
func IssueToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    string(u.Role),
		"name":    u.Name,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a raw token, as sent in the websocket auth frame.
func ParseToken(secret, tokenString string) (authz.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return authz.Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return authz.Identity{}, errors.New("invalid token")
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (authz.Identity, error) {
	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return authz.Identity{}, errors.Wrap(err, "user_id claim")
	}
	role := models.Role(fmt.Sprint(claims["role"]))
	if !role.Valid() {
		return authz.Identity{}, errors.Errorf("unknown role %q", role)
	}
	name, _ := claims["name"].(string)
	return authz.Identity{ID: userID, Role: role, Name: name}, nil
}
