package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/wwwizards/leadflow/internal/entity"
)

func newTestRepo(t *testing.T) *LeadRepository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or every query would see its own empty :memory: db.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo, err := NewLeadRepository(db, "sqlite")
	require.NoError(t, err)
	return repo
}

func testLead(userID int64, createdAt time.Time) *entity.Lead {
	return &entity.Lead{
		UserID:         userID,
		Username:       "jdoe",
		FirstName:      "Jane",
		LastName:       "Doe",
		ServiceType:    "shop",
		Budget:         "over_1m",
		Timeline:       "no_rush",
		CompanyName:    "Acme Co",
		ContactName:    "Jane Roe",
		ContactPhone:   "+1234567",
		ContactEmail:   "jane@acme.com",
		AdditionalInfo: "a web shop",
		Status:         entity.StatusNew,
		CreatedAt:      createdAt,
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	res := repo.Save(ctx, testLead(10, createdAt))
	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, res.ID)

	lead, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, lead.ID)
	assert.Equal(t, int64(10), lead.UserID)
	assert.Equal(t, "Acme Co", lead.CompanyName)
	assert.Equal(t, "a web shop", lead.AdditionalInfo)
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.True(t, lead.CreatedAt.Equal(createdAt))
}

func TestGetMissingLead(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "12345")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestListNewestFirstWithPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 5; i++ {
		res := repo.Save(ctx, testLead(i, base.Add(time.Duration(i)*time.Minute)))
		require.True(t, res.Success)
	}

	leads, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, int64(5), leads[0].UserID)
	assert.Equal(t, int64(4), leads[1].UserID)
	assert.Equal(t, int64(3), leads[2].UserID)

	leads, err = repo.List(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, int64(2), leads[0].UserID)
	assert.Equal(t, int64(1), leads[1].UserID)
}

func TestListOrdersAcrossTimeZones(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	east := time.FixedZone("UTC+14", 14*60*60)
	// 23:00+14:00 is 09:00Z; stored without normalization its text form
	// would sort after every same-day UTC timestamp.
	early := time.Date(2025, 6, 1, 23, 0, 0, 0, east)
	late := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	earlyRes := repo.Save(ctx, testLead(1, early))
	require.True(t, earlyRes.Success)
	require.True(t, repo.Save(ctx, testLead(2, late)).Success)

	leads, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, int64(2), leads[0].UserID, "10:00Z is newer than 09:00Z")
	assert.Equal(t, int64(1), leads[1].UserID)

	lead, err := repo.Get(ctx, earlyRes.ID)
	require.NoError(t, err)
	assert.True(t, lead.CreatedAt.Equal(early))
}

func TestUpdateStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(1, time.Now().UTC()))
	require.True(t, res.Success)

	assert.True(t, repo.UpdateStatus(ctx, res.ID, entity.StatusQuoted))

	lead, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusQuoted, lead.Status)

	assert.False(t, repo.UpdateStatus(ctx, "999", entity.StatusQuoted))
}

func TestDeleteRemovesRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(1, time.Now().UTC()))
	require.True(t, res.Success)

	assert.True(t, repo.Delete(ctx, res.ID))

	_, err := repo.Get(ctx, res.ID)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	// Second delete finds nothing.
	assert.False(t, repo.Delete(ctx, res.ID))
}

func TestConcurrentSavesProduceIndependentRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	done := make(chan entity.SaveResult, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			done <- repo.Save(ctx, testLead(int64(i+1), time.Now().UTC()))
		}(i)
	}

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		res := <-done
		require.True(t, res.Success)
		assert.False(t, seen[res.ID], "duplicate id %s", res.ID)
		seen[res.ID] = true
	}

	leads, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, leads, 10)
}
