package sheets

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/wwwizards/leadflow/internal/entity"
)

// Row layout: one lead per row, fixed column order A..O. The status
// column sits out-of-band at N so it can be rewritten without touching
// the appended data.
const (
	numColumns   = 15
	statusColumn = "N"
	firstDataRow = 2 // row 1 is the header
)

// LeadRepository is the append-only spreadsheet backend. The row number
// doubles as the lead id. True deletion is impossible here, so Delete
// marks status "deleted" and the row stays visible to Get and List;
// callers that care must filter.
type LeadRepository struct {
	client    *Client
	worksheet string
	now       func() time.Time
}

func NewLeadRepository(client *Client, worksheet string) *LeadRepository {
	return &LeadRepository{client: client, worksheet: worksheet, now: time.Now}
}

func (r *LeadRepository) Save(ctx context.Context, lead *entity.Lead) entity.SaveResult {
	row := leadToRow(lead, r.now())

	rowNum, err := r.client.AppendRow(r.worksheet, row)
	if err != nil {
		log.Printf("error saving lead to spreadsheet: %v", err)
		return entity.SaveResult{Success: false, Message: fmt.Sprintf("failed to save lead: %v", err)}
	}

	return entity.SaveResult{
		ID:      strconv.Itoa(rowNum),
		Success: true,
		Message: "Lead saved successfully",
	}
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	rowNum, err := strconv.Atoi(id)
	if err != nil || rowNum < firstDataRow {
		return nil, entity.ErrLeadNotFound
	}

	rows, err := r.client.GetRange(fmt.Sprintf("%s!A%d:O%d", r.worksheet, rowNum, rowNum))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, entity.ErrLeadNotFound
	}

	return rowToLead(id, rows[0]), nil
}

// List returns leads newest first. The sheet is append-ordered, so the
// snapshot is read once and walked backwards.
func (r *LeadRepository) List(ctx context.Context, limit, offset int) ([]*entity.Lead, error) {
	rows, err := r.client.GetRange(fmt.Sprintf("%s!A%d:O", r.worksheet, firstDataRow))
	if err != nil {
		return nil, err
	}

	var leads []*entity.Lead
	skipped := 0
	for i := len(rows) - 1; i >= 0 && len(leads) < limit; i-- {
		if len(rows[i]) == 0 {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		id := strconv.Itoa(firstDataRow + i)
		leads = append(leads, rowToLead(id, rows[i]))
	}
	return leads, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string) bool {
	rowNum, err := strconv.Atoi(id)
	if err != nil || rowNum < firstDataRow {
		return false
	}

	// Writing a cell past the last data row would succeed and fabricate a
	// lead; check the row exists first.
	rows, err := r.client.GetRange(fmt.Sprintf("%s!A%d:O%d", r.worksheet, rowNum, rowNum))
	if err != nil || len(rows) == 0 || len(rows[0]) == 0 {
		return false
	}

	cell := fmt.Sprintf("%s!%s%d", r.worksheet, statusColumn, rowNum)
	if err := r.client.UpdateRange(cell, [][]string{{status}}); err != nil {
		log.Printf("error updating lead %s status in spreadsheet: %v", id, err)
		return false
	}
	return true
}

// Delete soft-deletes: the backend cannot remove an appended row.
func (r *LeadRepository) Delete(ctx context.Context, id string) bool {
	return r.UpdateStatus(ctx, id, entity.StatusDeleted)
}

func leadToRow(lead *entity.Lead, now time.Time) []string {
	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return []string{
		createdAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(lead.UserID, 10),
		lead.Username,
		lead.FirstName,
		lead.LastName,
		lead.ServiceType,
		lead.Budget,
		lead.Timeline,
		lead.CompanyName,
		lead.ContactName,
		lead.ContactPhone,
		lead.ContactEmail,
		lead.AdditionalInfo,
		lead.Status,
		fmt.Sprintf("tg://user?id=%d", lead.UserID),
	}
}

func rowToLead(id string, row []string) *entity.Lead {
	for len(row) < numColumns {
		row = append(row, "")
	}

	userID, _ := strconv.ParseInt(row[1], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339, row[0])

	return &entity.Lead{
		ID:             id,
		UserID:         userID,
		Username:       row[2],
		FirstName:      row[3],
		LastName:       row[4],
		ServiceType:    row[5],
		Budget:         row[6],
		Timeline:       row[7],
		CompanyName:    row[8],
		ContactName:    row[9],
		ContactPhone:   row[10],
		ContactEmail:   row[11],
		AdditionalInfo: row[12],
		Status:         row[13],
		CreatedAt:      createdAt,
	}
}
