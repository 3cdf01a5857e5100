package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolsite/backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const (
	// imageURLExpiry bounds the lifetime of presigned display URLs. URLs are
	// re-resolved on every read, never stored.
	imageURLExpiry = 15 * time.Minute

	// searchTakePerColumn caps each per-column search query before the union.
	searchTakePerColumn = 5
)

// ObjectStore is the slice of object storage the content layer needs: issue
// upload and display URLs and drop blobs owned by deleted records.
type ObjectStore interface {
	PresignedPutURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// Record is implemented by every content model via BaseModel and
// ContentFields.
type Record interface {
	RecordID() uuid.UUID
	RecordDate() int64
	SetRecordDate(ms int64)
	ImageObjectName() *string
	SetImageURL(url string)
}

type RecordOf[T any] interface {
	Record
	*T
}

// ContentKind describes the per-kind constants: how many records a public
// list returns, which columns keyword search runs over, and whether the
// ranking date is assigned by the server at create time.
type ContentKind struct {
	Name          string
	Plural        string
	PageBound     int // 0 means unbounded
	SearchColumns []string
	ServerDate    bool
}

var (
	AnnouncementKind = ContentKind{Name: "announcement", Plural: "announcements", PageBound: 5, SearchColumns: []string{"title", "content"}, ServerDate: true}
	EventKind        = ContentKind{Name: "event", Plural: "events", PageBound: 3, SearchColumns: []string{"title", "description"}, ServerDate: false}
	FacilityKind     = ContentKind{Name: "facility", Plural: "facilities", PageBound: 0, SearchColumns: []string{"name", "description"}, ServerDate: true}
	AchievementKind  = ContentKind{Name: "achievement", Plural: "achievements", PageBound: 4, SearchColumns: []string{"title", "description"}, ServerDate: true}
)

// ContentService implements list, search, create, update and delete for one
// content kind. All four kinds share this one implementation; only the model
// type and the kind descriptor differ.
type ContentService[T any, P RecordOf[T]] struct {
	db    *gorm.DB
	store ObjectStore
	kind  ContentKind
}

func NewContentService[T any, P RecordOf[T]](db *gorm.DB, store ObjectStore, kind ContentKind) *ContentService[T, P] {
	return &ContentService[T, P]{db: db, store: store, kind: kind}
}

func (s *ContentService[T, P]) Kind() ContentKind {
	return s.kind
}

// List returns the newest records first, capped at the kind's page bound,
// with display URLs resolved.
func (s *ContentService[T, P]) List(ctx context.Context) ([]T, error) {
	query := s.db.WithContext(ctx).Order("date DESC")
	if s.kind.PageBound > 0 {
		query = query.Limit(s.kind.PageBound)
	}

	records := make([]T, 0, s.kind.PageBound)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	s.resolveImageURLs(ctx, records)
	return records, nil
}

// Search runs one capped substring query per search column, then unions the
// results, dropping duplicates while preserving first-seen order.
func (s *ContentService[T, P]) Search(ctx context.Context, queryText string) ([]T, error) {
	pattern := "%" + strings.ToLower(queryText) + "%"

	seen := make(map[uuid.UUID]bool)
	combined := make([]T, 0)
	for _, column := range s.kind.SearchColumns {
		var matches []T
		err := s.db.WithContext(ctx).
			Where("LOWER("+column+") LIKE ?", pattern).
			Order("date DESC").
			Limit(searchTakePerColumn).
			Find(&matches).Error
		if err != nil {
			return nil, err
		}

		for _, match := range matches {
			id := P(&match).RecordID()
			if seen[id] {
				continue
			}
			seen[id] = true
			combined = append(combined, match)
		}
	}

	s.resolveImageURLs(ctx, combined)
	return combined, nil
}

func (s *ContentService[T, P]) Create(ctx context.Context, record P) error {
	if s.kind.ServerDate {
		record.SetRecordDate(time.Now().UnixMilli())
	}
	return s.db.WithContext(ctx).Create(record).Error
}

// Update replaces the full mutable field set, image reference included. The
// caller decides whether the image id is retained, replaced or cleared; a
// replaced blob is not deleted here.
func (s *ContentService[T, P]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record and the blob it owns. The blob goes first: if
// that fails the row survives with a dangling reference, which is recoverable,
// whereas a removed row would leave the blob orphaned for good.
func (s *ContentService[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	var record T
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if name := P(&record).ImageObjectName(); name != nil && *name != "" {
		if err := s.store.Delete(ctx, *name); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Delete(&record).Error
}

func (s *ContentService[T, P]) resolveImageURLs(ctx context.Context, records []T) {
	for i := range records {
		record := P(&records[i])
		name := record.ImageObjectName()
		if name == nil || *name == "" {
			continue
		}

		url, err := s.store.PresignedGetURL(ctx, *name, imageURLExpiry)
		if err != nil {
			// imageUrl stays null; a broken reference must not fail the read
			logger.Warn("image_url_resolve_failed", map[string]interface{}{
				"kind":        s.kind.Name,
				"record_id":   record.RecordID().String(),
				"object_name": *name,
				"error":       err.Error(),
			})
			continue
		}
		record.SetImageURL(url)
	}
}
