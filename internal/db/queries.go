package db

import (
	"context"
	"strings"
	"time"

	"depositdesk/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries wraps database queries
type Queries struct {
	*pgxpool.Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{Pool: pool}
}

// ClaimCase represents a deposit claim case row
type ClaimCase struct {
	ID               string
	PropertyAddress  string
	LandlordName     string
	TenantID         string
	DepositAmount    float64
	InspectionEndsAt *time.Time
	ResponseDeadline *time.Time
	CreatedAt        time.Time
}

// ClaimItemRow represents one claim line item row
type ClaimItemRow struct {
	ID                  string
	CaseID              string
	Title               string
	ClaimedAmount       float64
	Description         string
	Status              string
	TenantResponse      *string
	TenantCounterAmount *float64
	TenantExplanation   *string
	EvidencePhotos      []string
	EvidenceDocuments   []string
	TenantPhotos        []string
	TenantDocuments     []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AwaitingResponse reports whether the row still accepts a tenant response.
// Status comparison is case-insensitive; stored casing is not guaranteed.
func (r ClaimItemRow) AwaitingResponse() bool {
	if r.TenantResponse != nil && *r.TenantResponse != "" {
		return false
	}
	switch model.ClaimStatus(strings.ToLower(r.Status)) {
	case model.StatusSubmitted, model.StatusTenantNotified, model.StatusPendingResponse:
		return true
	}
	return false
}

// EvidenceFile represents an uploaded tenant evidence file row
type EvidenceFile struct {
	Name         string
	ItemID       string
	Kind         string
	OriginalName string
	ContentType  string
	SizeBytes    int64
	SHA256       string
	UploadedAt   time.Time
}

func (q *Queries) GetCaseByID(ctx context.Context, id string) (ClaimCase, error) {
	var c ClaimCase
	err := q.Pool.QueryRow(ctx,
		`SELECT id, property_address, landlord_name, tenant_id, deposit_amount,
			inspection_ends_at, response_deadline, created_at
		FROM claim_cases WHERE id = $1`,
		id,
	).Scan(
		&c.ID, &c.PropertyAddress, &c.LandlordName, &c.TenantID, &c.DepositAmount,
		&c.InspectionEndsAt, &c.ResponseDeadline, &c.CreatedAt,
	)
	return c, err
}

func (q *Queries) GetItemsByCase(ctx context.Context, caseID string) ([]ClaimItemRow, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT id, case_id, title, claimed_amount, description, status,
			tenant_response, tenant_counter_amount, tenant_explanation,
			evidence_photos, evidence_documents, tenant_photos, tenant_documents,
			created_at, updated_at
		FROM claim_items WHERE case_id = $1 ORDER BY created_at, id`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ClaimItemRow
	for rows.Next() {
		var it ClaimItemRow
		if err := rows.Scan(
			&it.ID, &it.CaseID, &it.Title, &it.ClaimedAmount, &it.Description, &it.Status,
			&it.TenantResponse, &it.TenantCounterAmount, &it.TenantExplanation,
			&it.EvidencePhotos, &it.EvidenceDocuments, &it.TenantPhotos, &it.TenantDocuments,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (q *Queries) GetItemByID(ctx context.Context, id string) (ClaimItemRow, error) {
	var it ClaimItemRow
	err := q.Pool.QueryRow(ctx,
		`SELECT id, case_id, title, claimed_amount, description, status,
			tenant_response, tenant_counter_amount, tenant_explanation,
			evidence_photos, evidence_documents, tenant_photos, tenant_documents,
			created_at, updated_at
		FROM claim_items WHERE id = $1`,
		id,
	).Scan(
		&it.ID, &it.CaseID, &it.Title, &it.ClaimedAmount, &it.Description, &it.Status,
		&it.TenantResponse, &it.TenantCounterAmount, &it.TenantExplanation,
		&it.EvidencePhotos, &it.EvidenceDocuments, &it.TenantPhotos, &it.TenantDocuments,
		&it.CreatedAt, &it.UpdatedAt,
	)
	return it, err
}

type UpdateItemResponseParams struct {
	ID              string
	Status          string
	Response        string
	CounterAmount   *float64
	Explanation     string
	TenantPhotos    []string
	TenantDocuments []string
}

func (q *Queries) UpdateItemResponse(ctx context.Context, p UpdateItemResponseParams) error {
	_, err := q.Pool.Exec(ctx,
		`UPDATE claim_items SET
			status = $2, tenant_response = $3, tenant_counter_amount = $4,
			tenant_explanation = $5, tenant_photos = $6, tenant_documents = $7,
			updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Status, p.Response, p.CounterAmount, p.Explanation,
		p.TenantPhotos, p.TenantDocuments,
	)
	return err
}

// UpdateCaseItemsStatus moves every item of a case from one status to another
func (q *Queries) UpdateCaseItemsStatus(ctx context.Context, caseID, from, to string) error {
	_, err := q.Pool.Exec(ctx,
		`UPDATE claim_items SET status = $3, updated_at = NOW()
		WHERE case_id = $1 AND status = $2`,
		caseID, from, to,
	)
	return err
}

func (q *Queries) InsertEvidenceFile(ctx context.Context, f EvidenceFile) error {
	_, err := q.Pool.Exec(ctx,
		`INSERT INTO evidence_files (name, item_id, kind, original_name, content_type, size_bytes, sha256)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.Name, f.ItemID, f.Kind, f.OriginalName, f.ContentType, f.SizeBytes, f.SHA256,
	)
	return err
}

func (q *Queries) GetEvidenceFileByName(ctx context.Context, name string) (EvidenceFile, error) {
	var f EvidenceFile
	err := q.Pool.QueryRow(ctx,
		`SELECT name, item_id, kind, original_name, content_type, size_bytes, sha256, uploaded_at
		FROM evidence_files WHERE name = $1`,
		name,
	).Scan(&f.Name, &f.ItemID, &f.Kind, &f.OriginalName, &f.ContentType, &f.SizeBytes, &f.SHA256, &f.UploadedAt)
	return f, err
}
