package ports

import (
	"context"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// UserRepository resolves identities for the chat handshake.
type UserRepository interface {
	// FindByEmailAndToken matches both fields exactly; the opaque API token
	// is compared by equality, never derived or hashed.
	FindByEmailAndToken(ctx context.Context, email, token string) (*domain.User, error)
}
