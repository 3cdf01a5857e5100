package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/pkg/logger"
	"gorm.io/gorm"
)

type stubStore struct {
	deleted   []string
	deleteErr error
	getErr    error
}

func (s *stubStore) PresignedPutURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "http://stub/upload/" + objectName, nil
}

func (s *stubStore) PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return "http://stub/get/" + objectName, nil
}

func (s *stubStore) Delete(ctx context.Context, objectName string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, objectName)
	return nil
}

func setupServiceTest(t *testing.T) (*gorm.DB, *stubStore) {
	t.Helper()
	logger.Init()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Announcement{}, &models.Event{}); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db, &stubStore{}
}

func TestCreateAssignsServerDate(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	before := time.Now().UnixMilli()
	record := &models.Announcement{Title: "Notice", Content: "Body"}
	if err := service.Create(context.Background(), record); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	after := time.Now().UnixMilli()

	if record.Date < before || record.Date > after {
		t.Fatalf("expected a server-assigned date in [%d,%d], got %d", before, after, record.Date)
	}
}

func TestCreateKeepsCallerDate(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Event, *models.Event](db, store, EventKind)

	record := &models.Event{
		Title:         "Sports day",
		Description:   "Annual meet",
		Venue:         "Ground",
		ContentFields: models.ContentFields{Date: 1234567890},
	}
	if err := service.Create(context.Background(), record); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.Date != 1234567890 {
		t.Fatalf("expected the caller's date to survive, got %d", record.Date)
	}
}

func TestListRespectsPageBound(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	for i := 1; i <= 8; i++ {
		announcement := models.Announcement{
			Title:         fmt.Sprintf("Notice %d", i),
			Content:       "Body",
			ContentFields: models.ContentFields{Date: int64(i * 100)},
		}
		if err := db.Create(&announcement).Error; err != nil {
			t.Fatalf("failed seeding announcement %d: %v", i, err)
		}
	}

	records, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	if records[0].Title != "Notice 8" {
		t.Fatalf("expected newest record first, got %q", records[0].Title)
	}
}

func TestSearchUnionDedupes(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	both := models.Announcement{
		Title:         "Picnic plan",
		Content:       "Picnic on Friday",
		ContentFields: models.ContentFields{Date: 300},
	}
	contentOnly := models.Announcement{
		Title:         "Reminder",
		Content:       "Bring picnic baskets",
		ContentFields: models.ContentFields{Date: 200},
	}
	miss := models.Announcement{
		Title:         "Exams",
		Content:       "Schedule attached",
		ContentFields: models.ContentFields{Date: 100},
	}
	for _, record := range []*models.Announcement{&both, &contentOnly, &miss} {
		if err := db.Create(record).Error; err != nil {
			t.Fatalf("failed seeding announcement: %v", err)
		}
	}

	results, err := service.Search(context.Background(), "PICNIC")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// title matches come first, so the double match leads
	if results[0].ID != both.ID {
		t.Fatalf("expected the title match first, got %q", results[0].Title)
	}
}

func TestSearchCapsEachColumn(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	for i := 0; i < 9; i++ {
		announcement := models.Announcement{
			Title:         fmt.Sprintf("Library notice %d", i),
			Content:       "Plain body",
			ContentFields: models.ContentFields{Date: int64(i)},
		}
		if err := db.Create(&announcement).Error; err != nil {
			t.Fatalf("failed seeding announcement %d: %v", i, err)
		}
	}

	results, err := service.Search(context.Background(), "library")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != searchTakePerColumn {
		t.Fatalf("expected %d results, got %d", searchTakePerColumn, len(results))
	}
}

func TestDeleteRemovesBlobFirst(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	announcement := models.Announcement{
		Title:         "With image",
		Content:       "Body",
		ContentFields: models.ContentFields{Date: 10, ImageID: ptr("images/banner")},
	}
	if err := db.Create(&announcement).Error; err != nil {
		t.Fatalf("failed seeding announcement: %v", err)
	}

	if err := service.Delete(context.Background(), announcement.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "images/banner" {
		t.Fatalf("expected the blob removed, got %v", store.deleted)
	}

	var count int64
	db.Model(&models.Announcement{}).Where("id = ?", announcement.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected the row removed")
	}
}

func TestDeleteKeepsRowWhenBlobDeleteFails(t *testing.T) {
	db, store := setupServiceTest(t)
	store.deleteErr = errors.New("storage unavailable")
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	announcement := models.Announcement{
		Title:         "With image",
		Content:       "Body",
		ContentFields: models.ContentFields{Date: 10, ImageID: ptr("images/banner")},
	}
	if err := db.Create(&announcement).Error; err != nil {
		t.Fatalf("failed seeding announcement: %v", err)
	}

	if err := service.Delete(context.Background(), announcement.ID); err == nil {
		t.Fatalf("expected delete to fail")
	}

	var count int64
	db.Model(&models.Announcement{}).Where("id = ?", announcement.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected the row to survive a failed blob delete")
	}
}

func TestNotFoundPaths(t *testing.T) {
	db, store := setupServiceTest(t)
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	missingID := uuid.New()

	if err := service.Update(context.Background(), missingID, map[string]interface{}{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := service.Delete(context.Background(), missingID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func ptr(value string) *string {
	return &value
}

func TestResolveImageURLDegrades(t *testing.T) {
	db, store := setupServiceTest(t)
	store.getErr = errors.New("object missing")
	service := NewContentService[models.Announcement, *models.Announcement](db, store, AnnouncementKind)

	announcement := models.Announcement{
		Title:         "Broken image",
		Content:       "Body",
		ContentFields: models.ContentFields{Date: 10, ImageID: ptr("images/gone")},
	}
	if err := db.Create(&announcement).Error; err != nil {
		t.Fatalf("failed seeding announcement: %v", err)
	}

	records, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ImageURL != nil {
		t.Fatalf("expected a null image url, got %v", *records[0].ImageURL)
	}
}
