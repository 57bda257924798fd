package user

import (
	"cmp"
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository stores accounts in db.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create stores user with its email lower-cased and the customer role when
// none is set.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	user.Role = cmp.Or(user.Role, domain.RoleCustomer)

	err := pkg.MapDBError(r.db.WithContext(ctx).Create(user).Error)
	if domain.IsAlreadyExists(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "email is already registered", err)
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail matches the address case-insensitively.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", normalizeEmail(email))
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
