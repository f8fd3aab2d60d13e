package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Tenant{},
		&models.Membership{},
		&models.Profile{},
		&models.Section{},
		&models.Block{},
		&models.Click{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser creates a user with a usable password ("testpassword123")
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		Role:         "USER",
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestTenant creates a tenant owned by the given user, including the
// canonical OWNER membership row.
func CreateTestTenant(t *testing.T, db *gorm.DB, owner *models.User) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:    "Test Workspace",
		Slug:    "test-" + uuid.New().String()[:8],
		OwnerID: owner.ID,
	}

	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to create test tenant: %v", err)
	}

	membership := &models.Membership{
		UserID:   owner.ID,
		TenantID: tenant.ID,
		Role:     string(access.RoleOwner),
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create owner membership: %v", err)
	}

	return tenant
}

// CreateTestMembership adds a user to a tenant with the given role
func CreateTestMembership(t *testing.T, db *gorm.DB, user *models.User, tenant *models.Tenant, role access.Role) *models.Membership {
	t.Helper()

	membership := &models.Membership{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     string(role),
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}

	return membership
}

// CreateTestProfile creates a published profile in the tenant
func CreateTestProfile(t *testing.T, db *gorm.DB, tenant *models.Tenant, handle string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		Base: models.Base{
			ID: uuid.New(),
		},
		TenantID:    tenant.ID,
		Handle:      handle,
		DisplayName: handle,
		Published:   true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	return profile
}

// CreateTestSection creates a section on the profile
func CreateTestSection(t *testing.T, db *gorm.DB, profile *models.Profile, order int) *models.Section {
	t.Helper()

	section := &models.Section{
		Base: models.Base{
			ID: uuid.New(),
		},
		ProfileID: profile.ID,
		Title:     "Test Section",
		Order:     order,
	}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("failed to create test section: %v", err)
	}

	return section
}

// CreateTestBlock creates a block with the given destination fields
func CreateTestBlock(t *testing.T, db *gorm.DB, section *models.Section, url, content string) *models.Block {
	t.Helper()

	block := &models.Block{
		Base: models.Base{
			ID: uuid.New(),
		},
		SectionID: section.ID,
		Type:      models.BlockTypeLink,
		Title:     "Test Block",
		Content:   content,
		URL:       url,
	}
	if err := db.Create(block).Error; err != nil {
		t.Fatalf("failed to create test block: %v", err)
	}

	return block
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	User       *models.User
	Tenant     *models.Tenant
	Token      string
}

// NewTestContext creates a complete setup: DB, owner user, tenant (with
// OWNER membership), and a valid token.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db)
	tenant := CreateTestTenant(t, db, user)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		User:       user,
		Tenant:     tenant,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// Identity returns the setup user's resolver identity
func (ts *TestSetup) Identity() access.Identity {
	return access.Identity{UserID: ts.User.ID, Email: ts.User.Email}
}
