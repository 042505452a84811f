package database

import (
	"time"
)

// User owns plants. Deleting a user cascades to every plant it owns, and
// through them to watering history and photos.
type User struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash, never serialized

	Plants []Plant `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Plant is the unit of tracking: a watering cadence in days plus the last
// watering instant. Status is always recomputed from these two, never stored.
type Plant struct {
	ID                    string     `gorm:"primaryKey;type:text" json:"id"`
	Name                  string     `gorm:"not null" json:"name"`
	Species               *string    `json:"species"`
	Location              *string    `json:"location"`
	WateringFrequencyDays int        `gorm:"not null" json:"wateringFrequencyDays"`
	LastWatered           *time.Time `json:"lastWatered"`
	Notes                 *string    `json:"notes"`
	// ProfileImageURL points at either a PlantPhoto or a WateringHistory image
	// of this plant. Application-level convention, not a foreign key.
	ProfileImageURL *string `json:"profileImageUrl"`

	UserID string `gorm:"index;type:text;not null" json:"userId"`

	WateringHistory []WateringHistory `gorm:"foreignKey:PlantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wateringHistory,omitempty"`
	Photos          []PlantPhoto      `gorm:"foreignKey:PlantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WateringHistory is an immutable record of one watering action. Only its
// ImageURL may later be cleared, when the attached photo is deleted.
type WateringHistory struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	PlantID   string    `gorm:"index;type:text;not null" json:"plantId"`
	WateredAt time.Time `gorm:"not null" json:"wateredAt"`
	Notes     *string   `json:"notes"`
	ImageURL  *string   `json:"imageUrl"`
}

// PlantPhoto is a standalone photo not tied to a watering event. Width and
// height are captured once at upload time from the decoded image header.
type PlantPhoto struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"`
	PlantID  string `gorm:"index;type:text;not null" json:"plantId"`
	ImageURL string `gorm:"not null" json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`

	CreatedAt time.Time `json:"createdAt"`
}
