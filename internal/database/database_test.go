package database_test

import (
	"context"
	"testing"

	"inkbook/internal/config"
	"inkbook/internal/database"
	"inkbook/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	return db
}

func TestOpenMigratesAndPings(t *testing.T) {
	db := openMemory(t)
	assert.NoError(t, database.Ping(context.Background(), db))
	assert.True(t, db.Migrator().HasTable(&models.ContactInquiry{}))
	assert.True(t, db.Migrator().HasTable("artist_styles"))
	assert.True(t, db.Migrator().HasTable("tattoo_tags"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestInquiryJSONColumnsRoundTrip(t *testing.T) {
	db := openMemory(t)
	inq := &models.ContactInquiry{
		ArtistID:        uuid.NewString(),
		ClientName:      "Mara",
		ClientEmail:     "mara@example.com",
		Message:         "Forearm piece",
		ProjectType:     models.ProjectMedium,
		Status:          models.InquiryPending,
		Priority:        5,
		Metadata:        datatypes.JSONMap{"referrer": "instagram", "consent": true},
		ReferenceImages: datatypes.NewJSONSlice([]string{"https://img.example.com/a.jpg"}),
	}
	require.NoError(t, db.Create(inq).Error)

	var loaded models.ContactInquiry
	require.NoError(t, db.First(&loaded, "id = ?", inq.ID).Error)
	assert.Equal(t, "instagram", loaded.Metadata["referrer"])
	assert.Equal(t, true, loaded.Metadata["consent"])
	assert.Equal(t, []string{"https://img.example.com/a.jpg"}, []string(loaded.ReferenceImages))
}
