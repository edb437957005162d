package ports

import (
	"context"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Name      string
	StudentID string
	Career    string
	Email     string
	Password  string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Student, error)
	// Login verifies credentials and returns a signed session token plus the
	// student's roster view.
	Login(ctx context.Context, email, password string) (string, *domain.Student, error)
}
