package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"sprout/internal/database"
)

func testRepo(t *testing.T) Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return New(db)
}

func mustUser(t *testing.T, r Repository) *database.User {
	t.Helper()
	u, err := r.CreateUser("demo@example.com", "Demo", "hunter22")
	require.NoError(t, err)
	return u
}

func mustPlant(t *testing.T, r Repository, userID string, freq int) *database.Plant {
	t.Helper()
	p, err := r.CreatePlant(userID, CreatePlantInput{Name: "Monstera", WateringFrequencyDays: freq})
	require.NoError(t, err)
	return p
}

func strp(s string) *string { return &s }

func TestCreateUserAndAuthenticate(t *testing.T) {
	r := testRepo(t)

	u, err := r.CreateUser("Demo@Example.com ", "Demo", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", u.Email, "email is normalized")
	assert.NotEqual(t, "hunter22", u.Password, "password is stored hashed")

	got, err := r.Authenticate("demo@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.Authenticate("demo@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.Authenticate("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r := testRepo(t)
	mustUser(t, r)

	_, err := r.CreateUser("demo@example.com", "Other", "password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreatePlantValidation(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)

	_, err := r.CreatePlant(u.ID, CreatePlantInput{Name: "  ", WateringFrequencyDays: 7})
	assert.True(t, IsValidation(err))

	_, err = r.CreatePlant(u.ID, CreatePlantInput{Name: "Fern", WateringFrequencyDays: 0})
	assert.True(t, IsValidation(err), "frequency 0 must be rejected")

	p, err := r.CreatePlant(u.ID, CreatePlantInput{
		Name:                  "  Fern  ",
		Species:               strp("   "),
		Notes:                 strp(" likes shade "),
		WateringFrequencyDays: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fern", p.Name)
	assert.Nil(t, p.Species, "blank optionals become NULL")
	require.NotNil(t, p.Notes)
	assert.Equal(t, "likes shade", *p.Notes)
	assert.Nil(t, p.LastWatered)
}

func TestListPlantsScopedAndOrdered(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	other, err := r.CreateUser("other@example.com", "Other", "password")
	require.NoError(t, err)

	mustPlant(t, r, u.ID, 7)
	mustPlant(t, r, u.ID, 5)
	mustPlant(t, r, other.ID, 3)

	plants, err := r.ListPlants(u.ID)
	require.NoError(t, err)
	assert.Len(t, plants, 2, "only the owner's plants are listed")
}

func TestGetPlantOwnership(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	other, err := r.CreateUser("other@example.com", "Other", "password")
	require.NoError(t, err)
	p := mustPlant(t, r, u.ID, 7)

	got, err := r.GetPlant(u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = r.GetPlant(other.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound, "foreign plants read as not found")

	_, err = r.GetPlant(u.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPlantLimitsHistoryToTwenty(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	base := time.Now().Add(-30 * 24 * time.Hour)
	for i := 0; i < 25; i++ {
		_, _, err := r.WaterPlant(u.ID, p.ID, nil, nil, base.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}

	got, err := r.GetPlant(u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, got.WateringHistory, 20)

	// Descending by wateredAt.
	for i := 1; i < len(got.WateringHistory); i++ {
		assert.True(t, !got.WateringHistory[i].WateredAt.After(got.WateringHistory[i-1].WateredAt))
	}
}

func TestUpdatePlantPartial(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p, err := r.CreatePlant(u.ID, CreatePlantInput{
		Name:                  "Monstera",
		Species:               strp("Monstera deliciosa"),
		WateringFrequencyDays: 7,
	})
	require.NoError(t, err)

	freq := 10
	updated, err := r.UpdatePlant(u.ID, p.ID, UpdatePlantInput{WateringFrequencyDays: &freq})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.WateringFrequencyDays)
	assert.Equal(t, "Monstera", updated.Name, "unsupplied fields are untouched")
	require.NotNil(t, updated.Species)

	_, err = r.UpdatePlant(u.ID, p.ID, UpdatePlantInput{Name: strp(" ")})
	assert.True(t, IsValidation(err))

	bad := 0
	_, err = r.UpdatePlant(u.ID, p.ID, UpdatePlantInput{WateringFrequencyDays: &bad})
	assert.True(t, IsValidation(err))

	_, err = r.UpdatePlant(u.ID, "missing", UpdatePlantInput{Name: strp("X")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWaterPlantAtomicEffect(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	now := time.Now().Truncate(time.Second)
	record, plant, err := r.WaterPlant(u.ID, p.ID, strp(" looking thirsty "), strp("/uploads/plants/x/1.jpg"), now)
	require.NoError(t, err)

	require.NotNil(t, record.Notes)
	assert.Equal(t, "looking thirsty", *record.Notes)
	require.NotNil(t, plant.LastWatered)
	assert.WithinDuration(t, now, *plant.LastWatered, time.Second)
	require.NotNil(t, plant.ProfileImageURL, "watering with a photo sets the profile image")
	assert.Equal(t, "/uploads/plants/x/1.jpg", *plant.ProfileImageURL)

	history, err := r.ListWateringHistory(u.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "exactly one history row per watering")

	// Watering without a photo keeps the existing profile image.
	_, plant, err = r.WaterPlant(u.ID, p.ID, nil, nil, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, plant.ProfileImageURL)
	assert.Equal(t, "/uploads/plants/x/1.jpg", *plant.ProfileImageURL)

	_, _, err = r.WaterPlant(u.ID, "missing", nil, nil, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePlantCascade(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	_, _, err := r.WaterPlant(u.ID, p.ID, nil, strp("/uploads/plants/p/a.jpg"), time.Now())
	require.NoError(t, err)
	_, err = r.CreatePhoto(u.ID, p.ID, "/uploads/plants/p/b.jpg", 10, 10, false)
	require.NoError(t, err)

	require.NoError(t, r.DeletePlantCascade(u.ID, p.ID))

	_, err = r.GetPlant(u.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ListWateringHistory(u.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserCascade(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)
	_, _, err := r.WaterPlant(u.ID, p.ID, nil, strp("/uploads/x.jpg"), time.Now())
	require.NoError(t, err)
	_, err = r.CreatePhoto(u.ID, p.ID, "/uploads/y.jpg", 1, 1, false)
	require.NoError(t, err)

	require.NoError(t, r.DeleteUserCascade(u.ID))

	_, err = r.Authenticate("demo@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = r.GetPlant(u.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.DeleteUserCascade(u.ID), ErrNotFound)
}

func TestListPhotosMergesBothSources(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	_, err := r.CreatePhoto(u.ID, p.ID, "/uploads/standalone.jpg", 5, 5, false)
	require.NoError(t, err)
	_, _, err = r.WaterPlant(u.ID, p.ID, strp("with pic"), strp("/uploads/watering.jpg"), time.Now())
	require.NoError(t, err)
	_, _, err = r.WaterPlant(u.ID, p.ID, nil, nil, time.Now())
	require.NoError(t, err)

	items, err := r.ListPhotos(u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2, "waterings without an image are excluded")

	kinds := map[PhotoKind]bool{}
	for _, it := range items {
		kinds[it.Type] = true
	}
	assert.True(t, kinds[KindPhoto])
	assert.True(t, kinds[KindWatering])
}

func TestCreatePhotoProfileFlag(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	_, err := r.CreatePhoto(u.ID, p.ID, "/uploads/a.jpg", 1, 1, true)
	require.NoError(t, err)

	got, err := r.GetPlant(u.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProfileImageURL)
	assert.Equal(t, "/uploads/a.jpg", *got.ProfileImageURL)

	_, err = r.CreatePhoto(u.ID, p.ID, "  ", 1, 1, false)
	assert.True(t, IsValidation(err))
}

func TestDeletePhotoReassignsProfileImage(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	older, err := r.CreatePhoto(u.ID, p.ID, "/uploads/older.jpg", 1, 1, false)
	require.NoError(t, err)
	profile, err := r.CreatePhoto(u.ID, p.ID, "/uploads/profile.jpg", 1, 1, true)
	require.NoError(t, err)

	deletion, err := r.DeletePhoto(u.ID, p.ID, profile.ID, KindPhoto)
	require.NoError(t, err)
	assert.True(t, deletion.WasProfileImage)
	require.NotNil(t, deletion.NewProfileURL)
	assert.Equal(t, "/uploads/older.jpg", *deletion.NewProfileURL)

	// Removing the last image leaves the plant without a profile image.
	deletion, err = r.DeletePhoto(u.ID, p.ID, older.ID, KindPhoto)
	require.NoError(t, err)
	assert.True(t, deletion.WasProfileImage)
	assert.Nil(t, deletion.NewProfileURL)

	got, err := r.GetPlant(u.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProfileImageURL)
}

func TestDeletePhotoPrefersWateringImageAsReplacement(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	// Watering image first, standalone photo later: the watering image still
	// wins the replacement, regardless of recency.
	_, _, err := r.WaterPlant(u.ID, p.ID, nil, strp("/uploads/watering.jpg"), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = r.CreatePhoto(u.ID, p.ID, "/uploads/newer-photo.jpg", 1, 1, false)
	require.NoError(t, err)
	profile, err := r.CreatePhoto(u.ID, p.ID, "/uploads/profile.jpg", 1, 1, true)
	require.NoError(t, err)

	deletion, err := r.DeletePhoto(u.ID, p.ID, profile.ID, KindPhoto)
	require.NoError(t, err)
	require.NotNil(t, deletion.NewProfileURL)
	assert.Equal(t, "/uploads/watering.jpg", *deletion.NewProfileURL)
}

func TestDeleteWateringPhotoKeepsRecord(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	record, _, err := r.WaterPlant(u.ID, p.ID, strp("note"), strp("/uploads/w.jpg"), time.Now())
	require.NoError(t, err)

	deletion, err := r.DeletePhoto(u.ID, p.ID, record.ID, KindWatering)
	require.NoError(t, err)
	assert.True(t, deletion.WasProfileImage, "the watering image had become the profile")

	history, err := r.ListWateringHistory(u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "the watering event itself survives")
	assert.Nil(t, history[0].ImageURL)
	require.NotNil(t, history[0].Notes)
}

func TestDeletePhotoUnknownKindAndMissing(t *testing.T) {
	r := testRepo(t)
	u := mustUser(t, r)
	p := mustPlant(t, r, u.ID, 7)

	_, err := r.DeletePhoto(u.ID, p.ID, "x", PhotoKind("selfie"))
	assert.True(t, IsValidation(err))

	_, err = r.DeletePhoto(u.ID, p.ID, "missing", KindPhoto)
	assert.ErrorIs(t, err, ErrNotFound)
}
