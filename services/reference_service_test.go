package services

import (
	"testing"

	"court_transfer_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceCatalogues(t *testing.T) {
	testDB := setupTestDB(t)

	t.Run("Courthouses", func(t *testing.T) {
		created, err := CreateCourthouse(testDB, "  Izmir Courthouse ")
		require.NoError(t, err)
		assert.Equal(t, "Izmir Courthouse", created.Name)
		assert.NotZero(t, created.ID)

		_, err = CreateCourthouse(testDB, "Ankara Courthouse")
		require.NoError(t, err)

		_, err = CreateCourthouse(testDB, "Izmir Courthouse")
		assert.ErrorIs(t, err, ErrConflict)

		list, err := ListCourthouses(testDB)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Ankara Courthouse", list[0].Name)
	})

	t.Run("Titles", func(t *testing.T) {
		_, err := CreateTitle(testDB, "Clerk")
		require.NoError(t, err)
		_, err = CreateTitle(testDB, "")
		assert.ErrorIs(t, err, ErrValidation)

		list, err := ListTitles(testDB)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Request types", func(t *testing.T) {
		_, err := CreateTransferRequestType(testDB, "Health")
		require.NoError(t, err)
		_, err = CreateTransferRequestType(testDB, "Health")
		assert.ErrorIs(t, err, ErrConflict)

		list, err := ListTransferRequestTypes(testDB)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Statuses are fixed", func(t *testing.T) {
		statuses, err := ListStatuses(testDB)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultStatuses, statuses)
	})
}
