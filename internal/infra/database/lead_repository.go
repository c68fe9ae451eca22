package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wwwizards/leadflow/internal/entity"
)

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS leads (
	id              SERIAL PRIMARY KEY,
	user_id         BIGINT NOT NULL,
	username        TEXT NOT NULL DEFAULT '',
	first_name      TEXT NOT NULL DEFAULT '',
	last_name       TEXT NOT NULL DEFAULT '',
	service_type    TEXT NOT NULL DEFAULT '',
	budget          TEXT NOT NULL DEFAULT '',
	timeline        TEXT NOT NULL DEFAULT '',
	company_name    TEXT NOT NULL DEFAULT '',
	contact_name    TEXT NOT NULL DEFAULT '',
	contact_phone   TEXT NOT NULL DEFAULT '',
	contact_email   TEXT NOT NULL DEFAULT '',
	additional_info TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'new',
	created_at      TEXT NOT NULL
)`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS leads (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id         INTEGER NOT NULL,
	username        TEXT NOT NULL DEFAULT '',
	first_name      TEXT NOT NULL DEFAULT '',
	last_name       TEXT NOT NULL DEFAULT '',
	service_type    TEXT NOT NULL DEFAULT '',
	budget          TEXT NOT NULL DEFAULT '',
	timeline        TEXT NOT NULL DEFAULT '',
	company_name    TEXT NOT NULL DEFAULT '',
	contact_name    TEXT NOT NULL DEFAULT '',
	contact_phone   TEXT NOT NULL DEFAULT '',
	contact_email   TEXT NOT NULL DEFAULT '',
	additional_info TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'new',
	created_at      TEXT NOT NULL
)`

// LeadRepository is the relational backend. One row per lead, a
// server-assigned integer id and an ISO-8601 created_at; rows really are
// deleted here, unlike the spreadsheet backend.
type LeadRepository struct {
	DB      *sql.DB
	dialect string // "postgres" or "sqlite"
}

func NewLeadRepository(db *sql.DB, dialect string) (*LeadRepository, error) {
	r := &LeadRepository{DB: db, dialect: dialect}

	schema := schemaPostgres
	if dialect == "sqlite" {
		schema = schemaSQLite
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("leads schema init: %w", err)
	}
	return r, nil
}

// bind rewrites ?-placeholders into $N for postgres. Queries are written
// once with ? and stay portable across both drivers.
func (r *LeadRepository) bind(query string) string {
	if r.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *LeadRepository) Save(ctx context.Context, lead *entity.Lead) entity.SaveResult {
	query := r.bind(`
		INSERT INTO leads (
			user_id, username, first_name, last_name,
			service_type, budget, timeline, company_name,
			contact_name, contact_phone, contact_email,
			additional_info, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	args := []any{
		lead.UserID, lead.Username, lead.FirstName, lead.LastName,
		lead.ServiceType, lead.Budget, lead.Timeline, lead.CompanyName,
		lead.ContactName, lead.ContactPhone, lead.ContactEmail,
		// UTC so the RFC3339 text sorts chronologically across zones.
		lead.AdditionalInfo, lead.Status, lead.CreatedAt.UTC().Format(time.RFC3339),
	}

	var id int64
	var err error
	if r.dialect == "postgres" {
		err = r.DB.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
	} else {
		var res sql.Result
		res, err = r.DB.ExecContext(ctx, query, args...)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		log.Printf("error saving lead to database: %v", err)
		return entity.SaveResult{Success: false, Message: fmt.Sprintf("failed to save lead: %v", err)}
	}

	return entity.SaveResult{
		ID:      fmt.Sprintf("%d", id),
		Success: true,
		Message: "Lead saved successfully",
	}
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	query := r.bind(`
		SELECT id, user_id, username, first_name, last_name,
		       service_type, budget, timeline, company_name,
		       contact_name, contact_phone, contact_email,
		       additional_info, status, created_at
		FROM leads WHERE id = ?`)

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, limit, offset int) ([]*entity.Lead, error) {
	query := r.bind(`
		SELECT id, user_id, username, first_name, last_name,
		       service_type, budget, timeline, company_name,
		       contact_name, contact_phone, contact_email,
		       additional_info, status, created_at
		FROM leads
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string) bool {
	query := r.bind(`UPDATE leads SET status = ? WHERE id = ?`)
	res, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		log.Printf("error updating lead %s status: %v", id, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false
	}
	return n > 0
}

// Delete physically removes the row.
func (r *LeadRepository) Delete(ctx context.Context, id string) bool {
	query := r.bind(`DELETE FROM leads WHERE id = ?`)
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		log.Printf("error deleting lead %s: %v", id, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false
	}
	return n > 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var createdAt string
	err := row.Scan(
		&lead.ID, &lead.UserID, &lead.Username, &lead.FirstName, &lead.LastName,
		&lead.ServiceType, &lead.Budget, &lead.Timeline, &lead.CompanyName,
		&lead.ContactName, &lead.ContactPhone, &lead.ContactEmail,
		&lead.AdditionalInfo, &lead.Status, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		lead.CreatedAt = ts
	}
	return &lead, nil
}
