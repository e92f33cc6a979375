package http

import (
	"crypto/rsa"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Paths reachable without a signed-in user. A trailing star also admits
// everything below the path. Reads on the posts API are deliberately
// public; the write is guarded inside its own handler.
var publicPaths = []string{
	"/",
	"/sign-in*",
	"/sign-up*",
	"/healthz",
	"/api/posts*",
	"/api/users*",
}

var publicPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(publicPaths))
	for _, path := range publicPaths {
		pattern := strings.Replace("^"+path+"$", "*$", "($|/)", 1)
		patterns = append(patterns, regexp.MustCompile(pattern))
	}
	return patterns
}()

func isPublicPath(path string) bool {
	for _, pattern := range publicPatterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// TokenReader verifies session tokens issued by the identity provider.
type TokenReader struct {
	key *rsa.PublicKey
}

// SReader is loaded at boot from the provider's session public key.
// When it is nil every request counts as unauthenticated.
var SReader *TokenReader

func NewSessionTokenReader(path string) (*TokenReader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read session public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to parse session public key: %w", err)
	}
	return &TokenReader{key: key}, nil
}

// Verify returns the account id a session token was issued for.
func (v *TokenReader) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || len(claims.Subject) == 0 {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}

// authenticate resolves the caller's identity from the Authorization
// header and gates non-public paths. Browsers get bounced to the
// sign-in page with a return url, API callers get a plain 401.
func authenticate(c *fiber.Ctx) error {
	if SReader != nil {
		header := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(header, "Bearer ") {
			if userID, err := SReader.Verify(header[7:]); err == nil {
				c.Locals("user_id", userID)
			}
		}
	}

	if isPublicPath(c.Path()) {
		return c.Next()
	}

	if userID, ok := c.Locals("user_id").(string); !ok || len(userID) == 0 {
		if strings.Contains(c.Get(fiber.HeaderAccept), "text/html") {
			return c.Redirect("/sign-in?redirect_url=" + url.QueryEscape(c.OriginalURL()))
		}
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	return c.Next()
}
