package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/schoolsite/backend/internal/database"
	"github.com/schoolsite/backend/internal/middleware"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/pkg/logger"
	"github.com/schoolsite/backend/pkg/utils"
	"gorm.io/gorm"
)

const testBootstrapEmail = "admin@school.in"

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *memObjectStore
}

var testSetupOnce sync.Once

// memObjectStore stands in for MinIO. Upload URLs are issued without creating
// the object; tests simulate the client's out-of-band PUT with put().
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string]bool
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: map[string]bool{}}
}

func (s *memObjectStore) PresignedPutURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "http://store.test/upload/" + objectName, nil
}

func (s *memObjectStore) PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.objects[objectName] {
		return "", fmt.Errorf("object %s not found", objectName)
	}
	return "http://store.test/get/" + objectName, nil
}

func (s *memObjectStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}

func (s *memObjectStore) put(objectName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = true
}

func (s *memObjectStore) has(objectName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[objectName]
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	store := newMemObjectStore()

	authHandler := NewAuthHandler(db)
	adminHandler := NewAdminHandler(db, testBootstrapEmail)
	imagesHandler := NewImagesHandler(store)
	announcementsHandler := NewAnnouncementsHandler(db, store)
	eventsHandler := NewEventsHandler(db, store)
	facilitiesHandler := NewFacilitiesHandler(db, store)
	achievementsHandler := NewAchievementsHandler(db, store)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/guest", authHandler.Guest)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	adminRoutes := api.Group("/admin")
	adminRoutes.Get("/status", authMiddleware.OptionalAuth, adminHandler.Status)
	adminRoutes.Post("/grant", authMiddleware.OptionalAuth, adminHandler.Grant)
	adminRoutes.Get("/users", authMiddleware.RequireAuth, middleware.AdminOnly, adminHandler.ListUsers)

	api.Post("/images/upload-url", authMiddleware.RequireAuth, middleware.AdminOnly, imagesHandler.UploadURL)

	announcementsHandler.Register(api, "/announcements", authMiddleware)
	eventsHandler.Register(api, "/events", authMiddleware)
	facilitiesHandler.Register(api, "/facilities", authMiddleware)
	achievementsHandler.Register(api, "/achievements", authMiddleware)

	return &testEnv{app: app, db: db, store: store}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        &email,
		PasswordHash: &hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	list, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data to be a list, got %T", body["data"])
	}
	return list
}
