package auth

import "toppharma/internal/domain/models"

// JWTVerifier validates Supabase access tokens.
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid, authenticated-role token.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	Close() error
}
