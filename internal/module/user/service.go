package user

import (
	"context"
	"time"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/session"
)

// Profile is the signed-in viewer as the API reports it.
type Profile struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	IssuedAt time.Time   `json:"issuedAt"`
}

// Service resolves the current viewer's profile.
type Service interface {
	Profile(ctx context.Context) (*Profile, error)
}

type userService struct {
	repo domain.UserRepository
}

// NewService creates a profile Service. repo may be nil when accounts live in
// the remote backend; profiles are then built from the session claims alone.
func NewService(repo domain.UserRepository) Service {
	return &userService{repo: repo}
}

func (s *userService) Profile(ctx context.Context) (*Profile, error) {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return nil, domain.ErrUnauthorized
	}

	p := &Profile{
		ID:       sess.UserID(),
		Email:    sess.Claims.Email,
		Role:     sess.Claims.Role,
		IssuedAt: sess.Claims.IssuedAt,
	}
	if s.repo == nil {
		return p, nil
	}

	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		// A token outliving its account is treated as signed out.
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	p.Name = u.Name
	p.Email = u.Email
	return p, nil
}
