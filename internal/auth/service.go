package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	TenantName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token  string         `json:"token"`
	User   *models.User   `json:"user"`
	Tenant *models.Tenant `json:"tenant,omitempty"`
}

// Register creates the user, their workspace tenant, and the tenant's OWNER
// membership in a single transaction. The membership row is what grants
// access later; Tenant.OwnerID is only a convenience copy.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	tenantName := input.TenantName
	if tenantName == "" {
		tenantName = input.Name + "'s Workspace"
	}

	var user models.User
	var tenant models.Tenant
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        input.Email,
			PasswordHash: hash,
			Name:         input.Name,
			Role:         "USER",
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		slug, err := uniqueSlug(tx, tenantName)
		if err != nil {
			return err
		}

		tenant = models.Tenant{
			Name:    tenantName,
			Slug:    slug,
			OwnerID: user.ID,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		membership := models.Membership{
			UserID:   user.ID,
			TenantID: tenant.ID,
			Role:     string(access.RoleOwner),
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:  token,
		User:   &user,
		Tenant: &tenant,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, "'", "")
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "workspace"
	}
	return out
}

// uniqueSlug suffixes the slug only when the plain form is taken.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	slug := slugify(name)

	var count int64
	if err := tx.Model(&models.Tenant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return "", fmt.Errorf("checking slug: %w", err)
	}
	if count == 0 {
		return slug, nil
	}

	return slug + "-" + uuid.New().String()[:8], nil
}
