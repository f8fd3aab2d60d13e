package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/api/middleware"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

type TenantHandler struct {
	db     *gorm.DB
	access *access.Service
}

func NewTenantHandler(db *gorm.DB, accessService *access.Service) *TenantHandler {
	return &TenantHandler{db: db, access: accessService}
}

// List handles GET /api/v1/tenants - every workspace the caller belongs to.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	summaries, err := h.access.UserTenants(r.Context(), ident)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

type TenantResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Role     string           `json:"role"`
	Profiles []models.Profile `json:"profiles"`
}

// Get handles GET /api/v1/tenants/{slug}
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	slug := chi.URLParam(r, "slug")

	grant, err := h.access.RequireTenantMembership(r.Context(), ident, slug, access.RoleViewer)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	var profiles []models.Profile
	if err := h.db.WithContext(r.Context()).
		Where("tenant_id = ?", grant.Tenant.ID).
		Order("created_at ASC").
		Find(&profiles).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list profiles"})
		return
	}

	writeJSON(w, http.StatusOK, TenantResponse{
		ID:       grant.Tenant.ID.String(),
		Name:     grant.Tenant.Name,
		Slug:     grant.Tenant.Slug,
		Role:     grant.Membership.Role,
		Profiles: profiles,
	})
}

type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Members handles GET /api/v1/tenants/{slug}/members
func (h *TenantHandler) Members(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	slug := chi.URLParam(r, "slug")

	grant, err := h.access.RequireTenantMembership(r.Context(), ident, slug, access.RoleViewer)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	var memberships []models.Membership
	if err := h.db.WithContext(r.Context()).
		Preload("User").
		Where("tenant_id = ?", grant.Tenant.ID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list members"})
		return
	}

	members := make([]MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		member := MemberResponse{
			UserID:   m.UserID.String(),
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		}
		if m.User != nil {
			member.Email = m.User.Email
			member.Name = m.User.Name
		}
		members = append(members, member)
	}

	writeJSON(w, http.StatusOK, members)
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AddMember handles POST /api/v1/tenants/{slug}/members - invite an existing
// user. Requires ADMIN; OWNER can only be granted through signup.
func (h *TenantHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	slug := chi.URLParam(r, "slug")

	grant, err := h.access.RequireTenantMembership(r.Context(), ident, slug, access.RoleAdmin)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	role := access.Role(req.Role)
	if !role.Valid() || role == access.RoleOwner {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Role must be ADMIN, EDITOR or VIEWER"})
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, "email = ?", req.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to look up user"})
		return
	}

	var existing models.Membership
	err = h.db.WithContext(r.Context()).
		First(&existing, "user_id = ? AND tenant_id = ?", user.ID, grant.Tenant.ID).Error
	if err == nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User is already a member"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to look up membership"})
		return
	}

	membership := models.Membership{
		UserID:   user.ID,
		TenantID: grant.Tenant.ID,
		Role:     string(role),
	}
	if err := h.db.WithContext(r.Context()).Create(&membership).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to add member"})
		return
	}

	writeJSON(w, http.StatusCreated, MemberResponse{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Name:     user.Name,
		Role:     membership.Role,
		JoinedAt: membership.CreatedAt,
	})
}

type UpdateMemberRequest struct {
	Role string `json:"role"`
}

// UpdateMember handles PUT /api/v1/tenants/{slug}/members/{userId}.
// The OWNER membership is immutable here.
func (h *TenantHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	slug := chi.URLParam(r, "slug")

	grant, err := h.access.RequireTenantMembership(r.Context(), ident, slug, access.RoleAdmin)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	role := access.Role(req.Role)
	if !role.Valid() || role == access.RoleOwner {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Role must be ADMIN, EDITOR or VIEWER"})
		return
	}

	var membership models.Membership
	if err := h.db.WithContext(r.Context()).
		First(&membership, "user_id = ? AND tenant_id = ?", userID, grant.Tenant.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Member not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to look up membership"})
		return
	}

	if access.Role(membership.Role) == access.RoleOwner {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Owner role cannot be changed"})
		return
	}

	if err := h.db.WithContext(r.Context()).
		Model(&models.Membership{}).
		Where("user_id = ? AND tenant_id = ?", userID, grant.Tenant.ID).
		Update("role", string(role)).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update member"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Member updated"})
}
