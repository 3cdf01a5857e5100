package models

// Event is a scheduled happening with a venue. Date is the event date and is
// supplied by the caller, not the server.
type Event struct {
	BaseModel
	ContentFields
	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Venue       string `json:"venue" gorm:"type:varchar(255);not null"`
}
