package model

import (
	"strings"
	"time"
)

// ClaimStatus represents the lifecycle status of a claim item
type ClaimStatus string

const (
	StatusSubmitted       ClaimStatus = "submitted"
	StatusTenantNotified  ClaimStatus = "tenant_notified"
	StatusPendingResponse ClaimStatus = "pending_response"
	StatusAccepted        ClaimStatus = "accepted"
	StatusDisputed        ClaimStatus = "disputed"
)

// ResponseChoice represents a tenant's answer to a single claim item
type ResponseChoice string

const (
	ResponseAccept        ResponseChoice = "accept"
	ResponsePartialAccept ResponseChoice = "partial_accept"
	ResponseReject        ResponseChoice = "reject"
)

// EvidenceType distinguishes the two evidence categories on a claim item
type EvidenceType string

const (
	EvidencePhotos    EvidenceType = "evidence_photos"
	EvidenceDocuments EvidenceType = "evidence_documents"
)

// Valid reports whether t is one of the two known evidence categories
func (t EvidenceType) Valid() bool {
	return t == EvidencePhotos || t == EvidenceDocuments
}

// DisplayState is the derived per-item state computed once per load.
// It drives the load-time pending/responded partition.
type DisplayState string

const (
	DisplayPending   DisplayState = "pending"
	DisplayResponded DisplayState = "responded"
)

// ClaimItem is one charged line item against a deposit
type ClaimItem struct {
	ID                     string         `json:"id"`
	Title                  string         `json:"title"`
	ClaimedAmount          float64        `json:"claimed_amount"`
	Description            string         `json:"description"`
	Status                 ClaimStatus    `json:"status"`
	TenantResponse         ResponseChoice `json:"tenant_response,omitempty"`
	TenantCounterAmount    *float64       `json:"tenant_counter_amount,omitempty"`
	TenantExplanation      string         `json:"tenant_explanation,omitempty"`
	TenantResponseDeadline *time.Time     `json:"tenant_response_deadline,omitempty"`
	CreatedAt              *time.Time     `json:"created_at,omitempty"`
	EvidencePhotos         []string       `json:"evidence_photos"`
	EvidenceDocuments      []string       `json:"evidence_documents"`
}

// AwaitingAction reports whether the item still accepts tenant input.
// Status comparison is case-insensitive; server casing is not guaranteed.
func (c ClaimItem) AwaitingAction() bool {
	switch ClaimStatus(strings.ToLower(string(c.Status))) {
	case StatusSubmitted, StatusTenantNotified:
		return true
	}
	return false
}

// DisplayState derives the pending/responded partition state. It is wider
// than AwaitingAction: an item whose status is pending_response, or that has
// no recorded tenant response at all, still counts as pending for filtering
// even though the form does not treat it as editable.
func (c ClaimItem) DisplayState() DisplayState {
	if c.TenantResponse == "" {
		return DisplayPending
	}
	switch ClaimStatus(strings.ToLower(string(c.Status))) {
	case StatusSubmitted, StatusTenantNotified, StatusPendingResponse:
		return DisplayPending
	}
	return DisplayResponded
}

// InspectionStatus reports the server-tracked inspection window
type InspectionStatus struct {
	IsActive bool       `json:"is_active"`
	Message  string     `json:"message,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// ClaimBundle is the payload returned by GET /api/deposits/claims/{claimId}
type ClaimBundle struct {
	Success          bool              `json:"success"`
	Claims           []ClaimItem       `json:"claims"`
	PropertyAddress  string            `json:"property_address"`
	LandlordName     string            `json:"landlord_name"`
	DepositAmount    float64           `json:"deposit_amount"`
	InspectionStatus *InspectionStatus `json:"inspection_status,omitempty"`
	Message          string            `json:"message,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// PageContext is the view-level context derived from a loaded bundle
type PageContext struct {
	PropertyAddress   string
	LandlordName      string
	DepositAmount     float64
	CreatedAt         *time.Time
	ResponseDeadline  *time.Time
	InspectionMessage string
	TotalClaims       int
	PendingClaims     int
}

// ItemResponse is one element of the respond request body
type ItemResponse struct {
	ItemID            string         `json:"item_id"`
	Response          ResponseChoice `json:"response"`
	CounterAmount     *float64       `json:"counter_amount"`
	Explanation       string         `json:"explanation"`
	EvidencePhotos    []string       `json:"evidence_photos"`
	EvidenceDocuments []string       `json:"evidence_documents"`
}

// RespondRequest is the body of POST /api/deposits/claims/{claimId}/respond
type RespondRequest struct {
	Responses []ItemResponse `json:"responses"`
}

// RespondResult is the respond endpoint's reply
type RespondResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// EvidenceUploadResult is the response-evidence endpoint's reply
type EvidenceUploadResult struct {
	Files []string `json:"files"`
}
