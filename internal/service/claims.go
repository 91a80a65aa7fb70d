package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"depositdesk/internal/db"
	"depositdesk/internal/model"
	"depositdesk/internal/schema"
	"depositdesk/internal/storage"

	"go.uber.org/zap"
)

// Store is the persistence surface the claim service needs. *db.Queries
// implements it.
type Store interface {
	GetCaseByID(ctx context.Context, id string) (db.ClaimCase, error)
	GetItemsByCase(ctx context.Context, caseID string) ([]db.ClaimItemRow, error)
	GetItemByID(ctx context.Context, id string) (db.ClaimItemRow, error)
	UpdateItemResponse(ctx context.Context, p db.UpdateItemResponseParams) error
	InsertEvidenceFile(ctx context.Context, f db.EvidenceFile) error
	GetEvidenceFileByName(ctx context.Context, name string) (db.EvidenceFile, error)
}

// EventBus publishes claim lifecycle events
type EventBus interface {
	PublishCase(caseID string, event map[string]interface{}) error
}

// ClaimService implements the deposits claims endpoints' semantics
type ClaimService struct {
	store     Store
	files     storage.Store
	bus       EventBus
	validator *schema.Validator
	log       *zap.Logger
	now       func() time.Time
}

func NewClaimService(store Store, files storage.Store, bus EventBus, validator *schema.Validator, log *zap.Logger) *ClaimService {
	return &ClaimService{
		store:     store,
		files:     files,
		bus:       bus,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// LoadBundle assembles the claim bundle for a case. While the inspection
// window is open the bundle carries only the inspection status, no claims.
func (s *ClaimService) LoadBundle(ctx context.Context, caseID string) (*model.ClaimBundle, error) {
	cs, err := s.store.GetCaseByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("claim case not found: %w", err)
	}

	bundle := &model.ClaimBundle{
		Success:         true,
		Claims:          []model.ClaimItem{},
		PropertyAddress: cs.PropertyAddress,
		LandlordName:    cs.LandlordName,
		DepositAmount:   cs.DepositAmount,
	}

	if cs.InspectionEndsAt != nil && cs.InspectionEndsAt.After(s.now()) {
		bundle.InspectionStatus = &model.InspectionStatus{
			IsActive: true,
			Message: fmt.Sprintf("The property inspection is in progress until %s. Claims will be available for response once it completes.",
				cs.InspectionEndsAt.Format("January 2, 2006")),
			EndsAt: cs.InspectionEndsAt,
		}
		return bundle, nil
	}

	rows, err := s.store.GetItemsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim items: %w", err)
	}
	for _, row := range rows {
		bundle.Claims = append(bundle.Claims, rowToItem(row, cs))
	}
	return bundle, nil
}

// ApplyResponses validates and records the tenant's aggregate response. The
// payload is the decoded respond request body; it is schema-checked before
// the business rules run, and nothing is written unless every response
// passes.
func (s *ClaimService) ApplyResponses(ctx context.Context, caseID string, payload map[string]interface{}) error {
	if err := s.validator.ValidateRespond(payload); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload: %w", err)
	}
	var req model.RespondRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("failed to decode responses: %w", err)
	}

	cs, err := s.store.GetCaseByID(ctx, caseID)
	if err != nil {
		return fmt.Errorf("claim case not found: %w", err)
	}
	if cs.ResponseDeadline != nil && s.now().After(*cs.ResponseDeadline) {
		return fmt.Errorf("the response deadline has passed")
	}

	rows, err := s.store.GetItemsByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to load claim items: %w", err)
	}
	byID := make(map[string]db.ClaimItemRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	// Validate everything before writing anything
	for _, r := range req.Responses {
		row, ok := byID[r.ItemID]
		if !ok {
			return fmt.Errorf("claim item %s does not belong to this case", r.ItemID)
		}
		if err := validateResponse(row, r); err != nil {
			return err
		}
	}

	for _, r := range req.Responses {
		status := model.StatusDisputed
		if r.Response == model.ResponseAccept {
			status = model.StatusAccepted
		}
		var counter *float64
		if r.Response == model.ResponsePartialAccept {
			counter = r.CounterAmount
		}
		if err := s.store.UpdateItemResponse(ctx, db.UpdateItemResponseParams{
			ID:              r.ItemID,
			Status:          string(status),
			Response:        string(r.Response),
			CounterAmount:   counter,
			Explanation:     r.Explanation,
			TenantPhotos:    orEmpty(r.EvidencePhotos),
			TenantDocuments: orEmpty(r.EvidenceDocuments),
		}); err != nil {
			return fmt.Errorf("failed to record response for item %s: %w", r.ItemID, err)
		}
	}

	_ = s.bus.PublishCase(caseID, map[string]interface{}{
		"type":   "claim.responded",
		"caseId": caseID,
		"items":  len(req.Responses),
	})

	s.log.Info("claim responses recorded",
		zap.String("case_id", caseID), zap.Int("items", len(req.Responses)))
	return nil
}

func validateResponse(row db.ClaimItemRow, r model.ItemResponse) error {
	if !row.AwaitingResponse() {
		return fmt.Errorf("claim item %s has already been responded to", r.ItemID)
	}
	if r.Response == model.ResponsePartialAccept {
		if r.CounterAmount == nil || *r.CounterAmount <= 0 || *r.CounterAmount >= row.ClaimedAmount {
			return fmt.Errorf("counter amount for item %s must be greater than 0 and less than %.2f", r.ItemID, row.ClaimedAmount)
		}
	}
	if r.Response != model.ResponseAccept && strings.TrimSpace(r.Explanation) == "" {
		return fmt.Errorf("an explanation is required for item %s", r.ItemID)
	}
	return nil
}

// EvidenceUpload describes one incoming multipart evidence file
type EvidenceUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SaveEvidence stores one tenant counter-evidence file for a claim item and
// returns the server-assigned reference.
func (s *ClaimService) SaveEvidence(ctx context.Context, itemID string, kind model.EvidenceType, up EvidenceUpload) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown evidence type %q", kind)
	}

	row, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("claim item not found: %w", err)
	}
	if !row.AwaitingResponse() {
		return "", fmt.Errorf("claim item %s has already been responded to", itemID)
	}

	if err := storage.PolicyFor(kind).Validate(up.Filename, up.ContentType, up.Size); err != nil {
		return "", fmt.Errorf("evidence file rejected: %w", err)
	}

	name := storage.NewObjectName(up.Filename)
	written, sum, err := s.files.Put(ctx, name, up.Content)
	if err != nil {
		return "", fmt.Errorf("failed to store evidence file: %w", err)
	}

	if err := s.store.InsertEvidenceFile(ctx, db.EvidenceFile{
		Name:         name,
		ItemID:       itemID,
		Kind:         string(kind),
		OriginalName: up.Filename,
		ContentType:  up.ContentType,
		SizeBytes:    written,
		SHA256:       sum,
	}); err != nil {
		return "", fmt.Errorf("failed to record evidence file: %w", err)
	}

	s.log.Info("evidence file stored",
		zap.String("item_id", itemID), zap.String("name", name), zap.Int64("bytes", written))
	return name, nil
}

// OpenEvidence resolves a stored evidence file by its reference
func (s *ClaimService) OpenEvidence(ctx context.Context, name string) (db.EvidenceFile, io.ReadCloser, error) {
	meta, err := s.store.GetEvidenceFileByName(ctx, name)
	if err != nil {
		return db.EvidenceFile{}, nil, fmt.Errorf("evidence file not found: %w", err)
	}
	rc, err := s.files.Open(ctx, name)
	if err != nil {
		return db.EvidenceFile{}, nil, fmt.Errorf("failed to open evidence file: %w", err)
	}
	return meta, rc, nil
}

func rowToItem(row db.ClaimItemRow, cs db.ClaimCase) model.ClaimItem {
	item := model.ClaimItem{
		ID:                     row.ID,
		Title:                  row.Title,
		ClaimedAmount:          row.ClaimedAmount,
		Description:            row.Description,
		Status:                 model.ClaimStatus(row.Status),
		TenantCounterAmount:    row.TenantCounterAmount,
		TenantResponseDeadline: cs.ResponseDeadline,
		EvidencePhotos:         orEmpty(row.EvidencePhotos),
		EvidenceDocuments:      orEmpty(row.EvidenceDocuments),
	}
	created := row.CreatedAt
	item.CreatedAt = &created
	if row.TenantResponse != nil {
		item.TenantResponse = model.ResponseChoice(*row.TenantResponse)
	}
	if row.TenantExplanation != nil {
		item.TenantExplanation = *row.TenantExplanation
	}
	return item
}

// orEmpty keeps array columns and wire arrays away from null
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
