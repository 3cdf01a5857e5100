package models

type Facility struct {
	BaseModel
	ContentFields
	Name        string `json:"name" gorm:"type:varchar(255);not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}
