// Package repository exposes the persistence operations of the application as
// an explicit interface, keeping handlers and the status engine free of any
// query-library detail.
package repository

import (
	"errors"
	"time"

	"sprout/internal/database"
)

var (
	// ErrNotFound covers both absent entities and entities owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken signals a duplicate unique email on registration.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials signals a failed login. It deliberately does not
	// distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports bad or missing input fields.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CreatePlantInput carries the fields accepted on plant creation. Optional
// strings are trimmed; empty ones become NULL.
type CreatePlantInput struct {
	Name                  string  `json:"name"`
	Species               *string `json:"species"`
	Location              *string `json:"location"`
	WateringFrequencyDays int     `json:"wateringFrequencyDays"`
	Notes                 *string `json:"notes"`
	ImageURL              *string `json:"imageUrl"`
}

// UpdatePlantInput is a partial update; nil means "leave unchanged".
type UpdatePlantInput struct {
	Name                  *string `json:"name"`
	Species               *string `json:"species"`
	Location              *string `json:"location"`
	WateringFrequencyDays *int    `json:"wateringFrequencyDays"`
	Notes                 *string `json:"notes"`
}

// PhotoKind selects which table a photo deletion targets.
type PhotoKind string

const (
	KindPhoto    PhotoKind = "photo"    // standalone PlantPhoto row
	KindWatering PhotoKind = "watering" // image attached to a WateringHistory row
)

// PhotoItem is one entry of the merged photo timeline (standalone photos plus
// watering-event images), newest first.
type PhotoItem struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Type      PhotoKind `json:"type"`
	Notes     *string   `json:"notes"`
}

// PhotoDeletion reports the outcome of DeletePhoto so the handler can remove
// the physical file and tell the client whether the profile image changed.
type PhotoDeletion struct {
	RemovedURL      *string `json:"-"`
	WasProfileImage bool    `json:"wasProfileImage"`
	NewProfileURL   *string `json:"newProfileImageUrl"`
}

// Repository is the storage contract consumed by the HTTP handlers.
type Repository interface {
	// Users
	CreateUser(email, name, password string) (*database.User, error)
	Authenticate(email, password string) (*database.User, error)
	DeleteUserCascade(userID string) error

	// Plants
	CreatePlant(userID string, in CreatePlantInput) (*database.Plant, error)
	ListPlants(userID string) ([]database.Plant, error)
	GetPlant(userID, plantID string) (*database.Plant, error)
	UpdatePlant(userID, plantID string, in UpdatePlantInput) (*database.Plant, error)
	DeletePlantCascade(userID, plantID string) error

	// Watering
	WaterPlant(userID, plantID string, notes, imageURL *string, now time.Time) (*database.WateringHistory, *database.Plant, error)
	ListWateringHistory(userID, plantID string) ([]database.WateringHistory, error)

	// Photos
	ListPhotos(userID, plantID string) ([]PhotoItem, error)
	CreatePhoto(userID, plantID, imageURL string, width, height int, isProfile bool) (*database.PlantPhoto, error)
	DeletePhoto(userID, plantID, photoID string, kind PhotoKind) (*PhotoDeletion, error)
}
