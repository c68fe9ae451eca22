package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwwizards/leadflow/internal/entity"
)

// fakeSheet emulates just enough of the values API: append a row, read a
// range, overwrite a single cell.
type fakeSheet struct {
	t    *testing.T
	rows [][]string

	failAppend bool
}

func (f *fakeSheet) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/spreadsheets/sheet-1/values/") {
			http.NotFound(w, r)
			return
		}
		rangeSpec := strings.TrimPrefix(r.URL.Path, "/spreadsheets/sheet-1/values/")

		switch {
		case r.Method == "POST" && strings.HasSuffix(rangeSpec, ":append"):
			f.handleAppend(w, r)
		case r.Method == "GET":
			f.handleGet(w, rangeSpec)
		case r.Method == "PUT":
			f.handleUpdate(w, r, rangeSpec)
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeSheet) handleAppend(w http.ResponseWriter, r *http.Request) {
	if f.failAppend {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
		return
	}
	var req appendRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	require.Len(f.t, req.Values, 1)

	f.rows = append(f.rows, req.Values[0])
	rowNum := firstDataRow + len(f.rows) - 1

	var resp appendResponse
	resp.Updates.UpdatedRange = fmt.Sprintf("Leads!A%d:O%d", rowNum, rowNum)
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeSheet) handleGet(w http.ResponseWriter, rangeSpec string) {
	var resp valuesResponse
	resp.Range = rangeSpec

	var start, end int
	if n, _ := fmt.Sscanf(rangeSpec, "Leads!A%d:O%d", &start, &end); n == 2 {
		// Single-row read, e.g. Leads!A3:O3.
		idx := start - firstDataRow
		if idx >= 0 && idx < len(f.rows) {
			resp.Values = [][]string{f.rows[idx]}
		}
	} else {
		resp.Values = f.rows
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeSheet) handleUpdate(w http.ResponseWriter, r *http.Request, rangeSpec string) {
	var rowNum int
	_, err := fmt.Sscanf(rangeSpec, "Leads!N%d", &rowNum)
	require.NoError(f.t, err, "only status-cell updates expected, got %q", rangeSpec)

	var req updateRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	idx := rowNum - firstDataRow
	require.True(f.t, idx >= 0 && idx < len(f.rows))
	f.rows[idx][13] = req.Values[0][0]
	w.Write([]byte(`{}`))
}

func newTestRepo(t *testing.T) (*LeadRepository, *fakeSheet) {
	fake := &fakeSheet{t: t}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "test-token", "sheet-1")
	return NewLeadRepository(client, "Leads"), fake
}

func testLead(userID int64) *entity.Lead {
	return &entity.Lead{
		UserID:       userID,
		FirstName:    "Jane",
		ServiceType:  "shop",
		Budget:       "over_1m",
		Timeline:     "no_rush",
		CompanyName:  "Acme Co",
		ContactPhone: "+1234567",
		ContactEmail: "jane@acme.com",
		Status:       entity.StatusNew,
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAssignsRowNumberID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(1))
	require.True(t, res.Success)
	assert.Equal(t, "2", res.ID, "first data row sits below the header")

	res = repo.Save(ctx, testLead(2))
	require.True(t, res.Success)
	assert.Equal(t, "3", res.ID)
}

func TestSaveReportsBackendFailure(t *testing.T) {
	repo, fake := newTestRepo(t)
	fake.failAppend = true

	res := repo.Save(context.Background(), testLead(1))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "failed to save lead")
}

func TestGetRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(77))
	require.True(t, res.Success)

	lead, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(77), lead.UserID)
	assert.Equal(t, "Acme Co", lead.CompanyName)
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, res.ID, lead.ID)
}

func TestGetUnknownRow(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "99")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	_, err = repo.Get(context.Background(), "not-a-row")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestListNewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		require.True(t, repo.Save(ctx, testLead(i)).Success)
	}

	leads, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, int64(4), leads[0].UserID)
	assert.Equal(t, int64(3), leads[1].UserID)

	leads, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, int64(2), leads[0].UserID)
	assert.Equal(t, int64(1), leads[1].UserID)
}

func TestDeleteIsSoftAndStaysRetrievable(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(5))
	require.True(t, res.Success)

	assert.True(t, repo.Delete(ctx, res.ID))

	// The row is still there, just marked deleted.
	lead, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeleted, lead.Status)

	leads, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, entity.StatusDeleted, leads[0].Status)
}

func TestUpdateStatus(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(5))
	require.True(t, res.Success)

	assert.True(t, repo.UpdateStatus(ctx, res.ID, entity.StatusContacted))

	lead, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, lead.Status)

	assert.False(t, repo.UpdateStatus(ctx, "bogus", entity.StatusContacted))
}

func TestUpdateStatusRowPastEndFails(t *testing.T) {
	repo, fake := newTestRepo(t)
	ctx := context.Background()

	res := repo.Save(ctx, testLead(5))
	require.True(t, res.Success)

	// Rows beyond the data are writable cells, not leads.
	assert.False(t, repo.UpdateStatus(ctx, "99", entity.StatusContacted))
	assert.False(t, repo.Delete(ctx, "99"))
	require.Len(t, fake.rows, 1)
	assert.Equal(t, entity.StatusNew, fake.rows[0][13])
}
