package models

// City is a location artists and salons are listed under.
type City struct {
	Base
	Name      string  `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string  `json:"slug" gorm:"type:varchar(120);uniqueIndex;not null"`
	Region    string  `json:"region,omitempty" gorm:"type:varchar(100)"`
	Country   string  `json:"country" gorm:"type:varchar(2);not null"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TagCategory groups tags for filtering.
type TagCategory string

const (
	TagStyle     TagCategory = "style"
	TagSubject   TagCategory = "subject"
	TagTechnique TagCategory = "technique"
)

// Valid reports whether c is a known tag category.
func (c TagCategory) Valid() bool {
	switch c {
	case TagStyle, TagSubject, TagTechnique:
		return true
	}
	return false
}

// Tag labels artists (styles) and tattoos.
type Tag struct {
	Base
	Name     string      `json:"name" gorm:"type:varchar(60);not null"`
	Slug     string      `json:"slug" gorm:"type:varchar(80);uniqueIndex;not null"`
	Category TagCategory `json:"category" gorm:"type:varchar(20);not null;index"`
}
