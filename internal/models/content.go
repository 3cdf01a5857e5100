package models

import "github.com/google/uuid"

// ContentFields carries what every published content kind shares: a ranking
// timestamp in milliseconds since epoch, an optional reference to an uploaded
// image object, and the display URL resolved from that reference on read.
// The URL is derived per request and never persisted.
type ContentFields struct {
	Date     int64   `json:"date" gorm:"not null;index"`
	ImageID  *string `json:"imageId,omitempty" gorm:"type:text"`
	ImageURL *string `json:"imageUrl" gorm:"-"`
}

func (f *ContentFields) RecordDate() int64 {
	return f.Date
}

func (f *ContentFields) SetRecordDate(ms int64) {
	f.Date = ms
}

func (f *ContentFields) ImageObjectName() *string {
	return f.ImageID
}

func (f *ContentFields) SetImageURL(url string) {
	f.ImageURL = &url
}

func (b *BaseModel) RecordID() uuid.UUID {
	return b.ID
}
