package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// Identity is the caller's resolved identity, passed explicitly rather than
// read from ambient session state so the resolver is testable without a
// request framework.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Grant is the result of a successful membership check.
type Grant struct {
	User       *models.User
	Tenant     *models.Tenant
	Membership *models.Membership
}

// Role returns the caller's effective role within the granted tenant.
func (g *Grant) Role() Role {
	return Role(g.Membership.Role)
}

// ProfileGrant extends Grant with the profile the access was resolved
// through.
type ProfileGrant struct {
	Grant
	Profile *models.Profile
}

// TenantSummary is one entry in a user's tenant list.
type TenantSummary struct {
	Tenant       models.Tenant `json:"tenant"`
	Role         Role          `json:"role"`
	ProfileCount int64         `json:"profile_count"`
}

// Service is the single source of truth for "can this user perform this
// action on this tenant/profile". It is stateless and never memoizes role
// lookups, so a role change is visible on the very next call.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RequireUser resolves the caller's user record. It fails with
// ErrUnauthenticated when the identity is empty or the referenced user no
// longer exists or is inactive.
func (s *Service) RequireUser(ctx context.Context, ident Identity) (*models.User, error) {
	if ident.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", ident.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUnauthenticated
	}

	return &user, nil
}

// RequireTenantMembership resolves the tenant by slug and gates the caller's
// membership against minRole. The membership row is canonical: a tenant's
// nominal owner without a membership row is still rejected.
func (s *Service) RequireTenantMembership(ctx context.Context, ident Identity, tenantSlug string, minRole Role) (*Grant, error) {
	user, err := s.RequireUser(ctx, ident)
	if err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "slug = ?", tenantSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up tenant: %w", err)
	}

	membership, err := s.gateMembership(ctx, user.ID, tenant.ID, minRole)
	if err != nil {
		return nil, err
	}

	return &Grant{User: user, Tenant: &tenant, Membership: membership}, nil
}

// RequireProfileAccess has the same contract as RequireTenantMembership but
// resolves the tenant transitively through the profile. A nonexistent
// profile always fails ErrNotFound, never ErrForbidden.
func (s *Service) RequireProfileAccess(ctx context.Context, ident Identity, profileID uuid.UUID, minRole Role) (*ProfileGrant, error) {
	user, err := s.RequireUser(ctx, ident)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Preload("Tenant").First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	membership, err := s.gateMembership(ctx, user.ID, profile.TenantID, minRole)
	if err != nil {
		return nil, err
	}

	return &ProfileGrant{
		Grant:   Grant{User: user, Tenant: profile.Tenant, Membership: membership},
		Profile: &profile,
	}, nil
}

func (s *Service) gateMembership(ctx context.Context, userID, tenantID uuid.UUID, minRole Role) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.WithContext(ctx).
		First(&membership, "user_id = ? AND tenant_id = ?", userID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("looking up membership: %w", err)
	}

	if !Role(membership.Role).AtLeast(minRole) {
		return nil, ErrForbidden
	}

	return &membership, nil
}

// UserTenants lists every tenant the caller belongs to, with the caller's
// role and a profile count, ordered by membership creation time. Self-scoped,
// so there is no role gate.
func (s *Service) UserTenants(ctx context.Context, ident Identity) ([]TenantSummary, error) {
	user, err := s.RequireUser(ctx, ident)
	if err != nil {
		return nil, err
	}

	var memberships []models.Membership
	if err := s.db.WithContext(ctx).
		Preload("Tenant").
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}

	if len(memberships) == 0 {
		return []TenantSummary{}, nil
	}

	tenantIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		tenantIDs = append(tenantIDs, m.TenantID)
	}

	type profileCount struct {
		TenantID uuid.UUID
		Count    int64
	}
	var counts []profileCount
	if err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("tenant_id, COUNT(*) AS count").
		Where("tenant_id IN ?", tenantIDs).
		Group("tenant_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("counting profiles: %w", err)
	}

	countByTenant := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByTenant[c.TenantID] = c.Count
	}

	summaries := make([]TenantSummary, 0, len(memberships))
	for _, m := range memberships {
		if m.Tenant == nil {
			continue
		}
		summaries = append(summaries, TenantSummary{
			Tenant:       *m.Tenant,
			Role:         Role(m.Role),
			ProfileCount: countByTenant[m.TenantID],
		})
	}

	return summaries, nil
}
