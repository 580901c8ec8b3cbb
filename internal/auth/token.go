package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dgrijalva/jwt-go"
)

// DefaultOrgClaim is the token claim holding the organization identifier
const DefaultOrgClaim = "id"

// ErrClaimMissing is returned when the token does not carry the requested claim
var ErrClaimMissing = errors.New("claim missing from token")

// OrganizationID decodes the token without verifying its signature and returns the
// value of claim as a string. Verification belongs to the backend that issued it.
func OrganizationID(token, claim string) (string, error) {
	parser := &jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("decoding token: %w", err)
	}

	switch v := claims[claim].(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("%w: %s", ErrClaimMissing, claim)
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrClaimMissing, claim)
	}
}
