package repository

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sprout/internal/database"
)

const bcryptCost = 12

type gormRepository struct {
	db *gorm.DB
}

// New builds the gorm-backed Repository.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// trimPtr trims an optional string; nil and whitespace-only collapse to NULL.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// --- Users ---

func (r *gormRepository) CreateUser(email, name, password string) (*database.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if email == "" || name == "" || password == "" {
		return nil, validationErr("Email, name, and password are required")
	}

	var existing database.User
	if err := r.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := database.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Password: string(hash),
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) Authenticate(email, password string) (*database.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user database.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// DeleteUserCascade removes the user and, in the same transaction, every
// owned plant with its watering history and photos. Children go first so the
// delete also works when the driver runs without foreign_keys enforcement.
func (r *gormRepository) DeleteUserCascade(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var plantIDs []string
		if err := tx.Model(&database.Plant{}).Where("user_id = ?", userID).Pluck("id", &plantIDs).Error; err != nil {
			return err
		}

		if len(plantIDs) > 0 {
			if err := tx.Where("plant_id IN ?", plantIDs).Delete(&database.WateringHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("plant_id IN ?", plantIDs).Delete(&database.PlantPhoto{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&database.Plant{}).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", userID).Delete(&database.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Plants ---

func (r *gormRepository) CreatePlant(userID string, in CreatePlantInput) (*database.Plant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErr("Name and watering frequency are required")
	}
	if in.WateringFrequencyDays < 1 {
		return nil, validationErr("Watering frequency must be at least 1 day")
	}

	plant := database.Plant{
		ID:                    uuid.NewString(),
		Name:                  name,
		Species:               trimPtr(in.Species),
		Location:              trimPtr(in.Location),
		WateringFrequencyDays: in.WateringFrequencyDays,
		Notes:                 trimPtr(in.Notes),
		ProfileImageURL:       trimPtr(in.ImageURL),
		UserID:                userID,
	}
	if err := r.db.Create(&plant).Error; err != nil {
		return nil, err
	}
	return &plant, nil
}

func (r *gormRepository) ListPlants(userID string) ([]database.Plant, error) {
	var plants []database.Plant
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&plants).Error
	return plants, err
}

// getOwnedPlant scopes every per-plant operation to the caller. A plant that
// exists but belongs to someone else is indistinguishable from one that
// doesn't exist.
func (r *gormRepository) getOwnedPlant(tx *gorm.DB, userID, plantID string) (*database.Plant, error) {
	var plant database.Plant
	if err := tx.Where("id = ? AND user_id = ?", plantID, userID).First(&plant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

func (r *gormRepository) GetPlant(userID, plantID string) (*database.Plant, error) {
	plant, err := r.getOwnedPlant(r.db, userID, plantID)
	if err != nil {
		return nil, err
	}

	// Last 20 watering events. Loaded separately rather than preloaded so the
	// per-parent limit is exact.
	err = r.db.Where("plant_id = ?", plantID).
		Order("watered_at DESC").
		Limit(20).
		Find(&plant.WateringHistory).Error
	if err != nil {
		return nil, err
	}
	return plant, nil
}

func (r *gormRepository) UpdatePlant(userID, plantID string, in UpdatePlantInput) (*database.Plant, error) {
	plant, err := r.getOwnedPlant(r.db, userID, plantID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationErr("Name must not be empty")
		}
		updates["name"] = name
	}
	if in.WateringFrequencyDays != nil {
		if *in.WateringFrequencyDays < 1 {
			return nil, validationErr("Watering frequency must be a positive number")
		}
		updates["watering_frequency_days"] = *in.WateringFrequencyDays
	}
	if in.Species != nil {
		updates["species"] = trimPtr(in.Species)
	}
	if in.Location != nil {
		updates["location"] = trimPtr(in.Location)
	}
	if in.Notes != nil {
		updates["notes"] = trimPtr(in.Notes)
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := r.db.Model(plant).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return r.getOwnedPlant(r.db, userID, plantID)
}

func (r *gormRepository) DeletePlantCascade(userID, plantID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.getOwnedPlant(tx, userID, plantID); err != nil {
			return err
		}

		if err := tx.Where("plant_id = ?", plantID).Delete(&database.WateringHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plant_id = ?", plantID).Delete(&database.PlantPhoto{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", plantID).Delete(&database.Plant{}).Error
	})
}

// --- Watering ---

// WaterPlant appends one history row and stamps the plant's lastWatered (and
// profile image, when a photo came with the watering) in a single transaction.
// Both writes land or neither does.
func (r *gormRepository) WaterPlant(userID, plantID string, notes, imageURL *string, now time.Time) (*database.WateringHistory, *database.Plant, error) {
	if _, err := r.getOwnedPlant(r.db, userID, plantID); err != nil {
		return nil, nil, err
	}

	notes = trimPtr(notes)
	imageURL = trimPtr(imageURL)

	record := database.WateringHistory{
		ID:        uuid.NewString(),
		PlantID:   plantID,
		WateredAt: now,
		Notes:     notes,
		ImageURL:  imageURL,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"last_watered": now,
			"updated_at":   now,
		}
		if imageURL != nil {
			// Latest photo becomes the profile picture.
			updates["profile_image_url"] = *imageURL
		}
		return tx.Model(&database.Plant{}).
			Where("id = ? AND user_id = ?", plantID, userID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, nil, err
	}

	plant, err := r.getOwnedPlant(r.db, userID, plantID)
	if err != nil {
		return nil, nil, err
	}
	return &record, plant, nil
}

func (r *gormRepository) ListWateringHistory(userID, plantID string) ([]database.WateringHistory, error) {
	if _, err := r.getOwnedPlant(r.db, userID, plantID); err != nil {
		return nil, err
	}

	var history []database.WateringHistory
	err := r.db.Where("plant_id = ?", plantID).Order("watered_at DESC").Find(&history).Error
	return history, err
}

// --- Photos ---

func (r *gormRepository) ListPhotos(userID, plantID string) ([]PhotoItem, error) {
	if _, err := r.getOwnedPlant(r.db, userID, plantID); err != nil {
		return nil, err
	}

	var photos []database.PlantPhoto
	if err := r.db.Where("plant_id = ?", plantID).Order("created_at DESC").Find(&photos).Error; err != nil {
		return nil, err
	}

	var waterings []database.WateringHistory
	if err := r.db.Where("plant_id = ? AND image_url IS NOT NULL", plantID).
		Order("watered_at DESC").Find(&waterings).Error; err != nil {
		return nil, err
	}

	items := make([]PhotoItem, 0, len(photos)+len(waterings))
	for _, p := range photos {
		items = append(items, PhotoItem{
			ID:        p.ID,
			ImageURL:  p.ImageURL,
			CreatedAt: p.CreatedAt,
			Type:      KindPhoto,
		})
	}
	for _, wr := range waterings {
		items = append(items, PhotoItem{
			ID:        wr.ID,
			ImageURL:  *wr.ImageURL,
			CreatedAt: wr.WateredAt,
			Type:      KindWatering,
			Notes:     wr.Notes,
		})
	}

	// Newest first across both sources.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *gormRepository) CreatePhoto(userID, plantID, imageURL string, width, height int, isProfile bool) (*database.PlantPhoto, error) {
	url := strings.TrimSpace(imageURL)
	if url == "" {
		return nil, validationErr("Image URL is required")
	}

	if _, err := r.getOwnedPlant(r.db, userID, plantID); err != nil {
		return nil, err
	}

	photo := database.PlantPhoto{
		ID:       uuid.NewString(),
		PlantID:  plantID,
		ImageURL: url,
		Width:    width,
		Height:   height,
	}
	if err := r.db.Create(&photo).Error; err != nil {
		return nil, err
	}

	if isProfile {
		err := r.db.Model(&database.Plant{}).
			Where("id = ?", plantID).
			Update("profile_image_url", url).Error
		if err != nil {
			return nil, err
		}
	}
	return &photo, nil
}

// DeletePhoto removes a standalone photo row, or strips the image off a
// watering record while keeping the watering event itself. When the removed
// image was the plant's profile image, the most recent remaining image takes
// over; a watering image wins over a standalone photo when both remain.
func (r *gormRepository) DeletePhoto(userID, plantID, photoID string, kind PhotoKind) (*PhotoDeletion, error) {
	plant, err := r.getOwnedPlant(r.db, userID, plantID)
	if err != nil {
		return nil, err
	}

	var removedURL *string

	switch kind {
	case KindPhoto:
		var photo database.PlantPhoto
		if err := r.db.Where("id = ? AND plant_id = ?", photoID, plantID).First(&photo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		removedURL = &photo.ImageURL

		if err := r.db.Delete(&photo).Error; err != nil {
			return nil, err
		}

	case KindWatering:
		var record database.WateringHistory
		if err := r.db.Where("id = ? AND plant_id = ?", photoID, plantID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		removedURL = record.ImageURL

		// The watering event stays; only its image goes.
		if err := r.db.Model(&record).Update("image_url", nil).Error; err != nil {
			return nil, err
		}

	default:
		return nil, validationErr("Photo type must be 'photo' or 'watering'")
	}

	deletion := &PhotoDeletion{RemovedURL: removedURL}
	if plant.ProfileImageURL != nil && removedURL != nil && *plant.ProfileImageURL == *removedURL {
		deletion.WasProfileImage = true
	}

	if deletion.WasProfileImage {
		newURL, err := r.pickReplacementProfile(plantID)
		if err != nil {
			return nil, err
		}
		deletion.NewProfileURL = newURL

		err = r.db.Model(&database.Plant{}).
			Where("id = ?", plantID).
			Update("profile_image_url", newURL).Error
		if err != nil {
			return nil, err
		}
	}

	return deletion, nil
}

func (r *gormRepository) pickReplacementProfile(plantID string) (*string, error) {
	var photos []database.PlantPhoto
	err := r.db.Where("plant_id = ?", plantID).
		Order("created_at DESC").Limit(1).Find(&photos).Error
	if err != nil {
		return nil, err
	}

	var waterings []database.WateringHistory
	err = r.db.Where("plant_id = ? AND image_url IS NOT NULL", plantID).
		Order("watered_at DESC").Limit(1).Find(&waterings).Error
	if err != nil {
		return nil, err
	}

	// Watering images represent more recent activity, so they take priority
	// over standalone photos regardless of actual timestamps.
	switch {
	case len(waterings) > 0:
		return waterings[0].ImageURL, nil
	case len(photos) > 0:
		return &photos[0].ImageURL, nil
	default:
		return nil, nil
	}
}
