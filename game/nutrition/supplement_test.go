package nutrition

import (
	"context"
	"testing"
	"time"

	"github.com/habitquest/server/model"
	"github.com/habitquest/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewService(db, zap.NewNop()), db
}

func createSupplement(t *testing.T, db *gorm.DB, name, category string) *model.Supplement {
	t.Helper()
	s := &model.Supplement{
		Name:          name,
		Category:      category,
		DefaultDosage: "1000mg once daily",
		IsActive:      true,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func TestListSupplements_FiltersByCategoryAndName(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	createSupplement(t, db, "Vitamin C", model.SupplementVitamin)
	createSupplement(t, db, "Vitamin D3", model.SupplementVitamin)
	createSupplement(t, db, "Magnesium", model.SupplementMineral)

	all, err := svc.ListSupplements(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	vitamins, err := svc.ListSupplements(ctx, model.SupplementVitamin, "")
	require.NoError(t, err)
	assert.Len(t, vitamins, 2)

	byName, err := svc.ListSupplements(ctx, "", "D3")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Vitamin D3", byName[0].Name)
}

func TestListSupplements_HidesInactive(t *testing.T) {
	svc, db := newTestService(t)
	s := createSupplement(t, db, "Discontinued", model.SupplementOther)
	require.NoError(t, db.Model(s).Update("is_active", false).Error)

	all, err := svc.ListSupplements(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddRegimen_RequiresCatalogEntry(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@example.com", "alice")

	_, err := svc.AddRegimen(ctx, user.ID, RegimenInput{SupplementID: 99, Dosage: "1 pill"})
	assert.ErrorIs(t, err, ErrSupplementNotFound)

	s := createSupplement(t, db, "Vitamin C", model.SupplementVitamin)
	us, err := svc.AddRegimen(ctx, user.ID, RegimenInput{
		SupplementID: s.ID, Dosage: "500mg", Frequency: "daily", Morning: true,
	})
	require.NoError(t, err)
	assert.True(t, us.IsActive)
	assert.True(t, us.Morning)
}

func TestListRegimens_JoinsCatalogAndFiltersActive(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@example.com", "alice")
	s := createSupplement(t, db, "Omega 3", model.SupplementOmega)

	us, err := svc.AddRegimen(ctx, user.ID, RegimenInput{SupplementID: s.ID, Dosage: "1g"})
	require.NoError(t, err)
	require.NoError(t, svc.StopRegimen(ctx, user.ID, us.ID, time.Now()))

	active, err := svc.ListRegimens(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListRegimens(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Omega 3", all[0].Supplement.Name)
	assert.NotNil(t, all[0].EndedDate)
}

func TestStopRegimen_OnlyOwnerAndOnlyOnce(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "a@example.com", "alice")
	bob := testutil.CreateUser(t, db, "b@example.com", "bob")
	s := createSupplement(t, db, "Zinc", model.SupplementMineral)

	us, err := svc.AddRegimen(ctx, alice.ID, RegimenInput{SupplementID: s.ID, Dosage: "15mg"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.StopRegimen(ctx, bob.ID, us.ID, time.Now()), ErrRegimenNotFound)
	require.NoError(t, svc.StopRegimen(ctx, alice.ID, us.ID, time.Now()))
	assert.ErrorIs(t, svc.StopRegimen(ctx, alice.ID, us.ID, time.Now()), ErrRegimenNotFound)
}

func TestLogIntake_ValidatesRegimenAndTimeOfDay(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "a@example.com", "alice")
	bob := testutil.CreateUser(t, db, "b@example.com", "bob")
	s := createSupplement(t, db, "Vitamin D3", model.SupplementVitamin)

	us, err := svc.AddRegimen(ctx, alice.ID, RegimenInput{SupplementID: s.ID, Dosage: "2000IU"})
	require.NoError(t, err)

	_, err = svc.LogIntake(ctx, alice.ID, IntakeInput{
		UserSupplementID: us.ID, TakenAt: time.Now(), DosageTaken: "2000IU", TimeOfDay: "noon",
	})
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	// Another user cannot log against someone else's regimen.
	_, err = svc.LogIntake(ctx, bob.ID, IntakeInput{
		UserSupplementID: us.ID, TakenAt: time.Now(), DosageTaken: "2000IU", TimeOfDay: "morning",
	})
	assert.ErrorIs(t, err, ErrRegimenNotFound)

	log, err := svc.LogIntake(ctx, alice.ID, IntakeInput{
		UserSupplementID: us.ID, TakenAt: time.Now(), DosageTaken: "2000IU", TimeOfDay: "morning",
	})
	require.NoError(t, err)
	assert.Equal(t, "morning", log.TimeOfDay)
}

func TestListIntakes_FiltersByRegimenAndDay(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@example.com", "alice")
	s := createSupplement(t, db, "Vitamin C", model.SupplementVitamin)

	us, err := svc.AddRegimen(ctx, user.ID, RegimenInput{SupplementID: s.ID, Dosage: "500mg"})
	require.NoError(t, err)

	today := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	yesterday := today.Add(-24 * time.Hour)
	for _, at := range []time.Time{today, yesterday} {
		_, err := svc.LogIntake(ctx, user.ID, IntakeInput{
			UserSupplementID: us.ID, TakenAt: at, DosageTaken: "500mg", TimeOfDay: "morning",
		})
		require.NoError(t, err)
	}

	all, err := svc.ListIntakes(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byDay, err := svc.ListIntakes(ctx, user.ID, nil, &today)
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, today.Unix(), byDay[0].TakenAt.Unix())

	byRegimen, err := svc.ListIntakes(ctx, user.ID, &us.ID, nil)
	require.NoError(t, err)
	assert.Len(t, byRegimen, 2)
}
