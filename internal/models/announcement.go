package models

// Announcement is a dated notice shown on the public site. Date is assigned
// server-side at creation time.
type Announcement struct {
	BaseModel
	ContentFields
	Title     string `json:"title" gorm:"type:varchar(255);not null"`
	Content   string `json:"content" gorm:"type:text;not null"`
	Important bool   `json:"important" gorm:"not null;default:false"`
}
