package models

type Achievement struct {
	BaseModel
	ContentFields
	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}
