package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"depositdesk/internal/model"

	"go.uber.org/zap"
)

// PageState is the coarse state of the response page for one visit.
// InspectionActive and Error are terminal until the page is loaded again
// with a different claim identifier.
type PageState string

const (
	StateLoading          PageState = "loading"
	StateInspectionActive PageState = "inspection_active"
	StateError            PageState = "error"
	StateLoaded           PageState = "loaded"
	StateSubmitting       PageState = "submitting"
	StateSubmitted        PageState = "submitted"
)

// API is the outbound surface the controller depends on. client.Client
// implements it.
type API interface {
	FetchBundle(ctx context.Context, claimID string) (*model.ClaimBundle, error)
	UploadEvidence(ctx context.Context, itemID string, evidenceType model.EvidenceType, name, contentType string, r io.Reader) ([]string, error)
	SubmitResponses(ctx context.Context, claimID string, responses []model.ItemResponse) error
}

// Session exposes the caller's role as an opaque capability
type Session interface {
	IsTenant() bool
	IsLandlord() bool
}

// Navigator abstracts page navigation (back, dashboard redirect)
type Navigator interface {
	GoBack()
	ToDashboard()
}

// EvidenceScope is the single-item evidence detail view
type EvidenceScope struct {
	ItemID    string
	Photos    []string
	Documents []string
}

// Controller drives the claim response form: it loads the claim bundle,
// holds per-item response drafts, validates them, uploads staged evidence,
// and submits the aggregate response.
type Controller struct {
	api     API
	session Session
	nav     Navigator
	log     *zap.Logger
	now     func() time.Time

	state   PageState
	claimID string
	items   []model.ClaimItem
	page    model.PageContext
	drafts  map[string]Draft
	errMsg  string
	scope   *EvidenceScope
}

func NewController(api API, session Session, nav Navigator, log *zap.Logger) *Controller {
	return &Controller{
		api:     api,
		session: session,
		nav:     nav,
		log:     log,
		now:     time.Now,
	}
}

func (c *Controller) State() PageState          { return c.state }
func (c *Controller) Items() []model.ClaimItem  { return c.items }
func (c *Controller) Page() model.PageContext   { return c.page }
func (c *Controller) Error() string             { return c.errMsg }
func (c *Controller) Draft(itemID string) Draft { return c.drafts[itemID] }

// Load fetches the claim bundle and derives the page state. It runs once per
// distinct claim identifier; loading the same identifier again is a no-op.
func (c *Controller) Load(ctx context.Context, claimID string) error {
	if claimID == c.claimID && c.state != "" && c.state != StateLoading {
		return nil
	}

	c.claimID = claimID
	c.state = StateLoading
	c.items = nil
	c.drafts = nil
	c.errMsg = ""
	c.scope = nil
	c.page = model.PageContext{}

	bundle, err := c.api.FetchBundle(ctx, claimID)
	if err != nil {
		c.fail("failed to load claim details")
		return err
	}
	if !bundle.Success {
		msg := bundle.Error
		if msg == "" {
			msg = "failed to load claim details"
		}
		c.fail(msg)
		return errors.New(msg)
	}

	c.page = model.PageContext{
		PropertyAddress: bundle.PropertyAddress,
		LandlordName:    bundle.LandlordName,
		DepositAmount:   bundle.DepositAmount,
	}

	// Inspection gate: no response UI while the inspection window is open
	if bundle.InspectionStatus != nil && bundle.InspectionStatus.IsActive {
		msg := bundle.InspectionStatus.Message
		if msg == "" {
			msg = bundle.Message
		}
		c.page.InspectionMessage = msg
		c.state = StateInspectionActive
		return nil
	}

	claims := bundle.Claims
	if first := firstClaim(claims); first != nil {
		c.page.ResponseDeadline = first.TenantResponseDeadline
		c.page.CreatedAt = first.CreatedAt
	}

	pending := 0
	for _, it := range claims {
		if it.DisplayState() == model.DisplayPending {
			pending++
		}
	}
	c.page.TotalClaims = len(claims)
	c.page.PendingClaims = pending

	// All responded: show everything read-only. Otherwise show only the
	// items still needing a response.
	if len(claims) > 0 && pending == 0 {
		c.items = claims
	} else {
		displayed := make([]model.ClaimItem, 0, pending)
		for _, it := range claims {
			if it.DisplayState() == model.DisplayPending {
				displayed = append(displayed, it)
			}
		}
		c.items = displayed
	}

	drafts := make(map[string]Draft, len(c.items))
	for _, it := range c.items {
		drafts[it.ID] = Draft{}
	}
	c.drafts = drafts
	c.state = StateLoaded
	return nil
}

func (c *Controller) fail(msg string) {
	c.errMsg = msg
	c.state = StateError
	c.log.Error("claim page load failed", zap.String("claim_id", c.claimID), zap.String("message", msg))
}

func firstClaim(claims []model.ClaimItem) *model.ClaimItem {
	if len(claims) == 0 {
		return nil
	}
	return &claims[0]
}

// ReadOnly reports whether the whole page is read-only: true only when the
// displayed set is non-empty and no item still awaits tenant action.
func (c *Controller) ReadOnly() bool {
	if len(c.items) == 0 {
		return false
	}
	for _, it := range c.items {
		if it.AwaitingAction() {
			return false
		}
	}
	return true
}

// DeadlinePassed reports whether the response deadline is behind the current
// time. Advisory only: it gates the submit action, nothing else.
func (c *Controller) DeadlinePassed() bool {
	dl := c.page.ResponseDeadline
	return dl != nil && c.now().After(*dl)
}

// CanSubmit reports whether the submit action should be offered
func (c *Controller) CanSubmit() bool {
	return c.state == StateLoaded && !c.ReadOnly() && !c.DeadlinePassed() && c.Validate() == nil
}

// Validate checks every displayed item's draft. All-or-nothing: any failure
// yields a single combined error.
func (c *Controller) Validate() error {
	if len(c.items) == 0 {
		return errors.New("there are no claim items to respond to")
	}

	var problems []string
	for _, it := range c.items {
		d := c.drafts[it.ID]
		name := model.FormatClaimType(it.Title)
		if d.Response == "" {
			problems = append(problems, fmt.Sprintf("%s: select a response", name))
			continue
		}
		if d.Response == model.ResponsePartialAccept {
			amt, err := parseAmount(d.CounterAmount)
			if err != nil || amt <= 0 || amt >= it.ClaimedAmount {
				problems = append(problems, fmt.Sprintf("%s: counter amount must be greater than 0 and less than %.2f", name, it.ClaimedAmount))
			}
		}
		if d.Response != model.ResponseAccept && strings.TrimSpace(d.Explanation) == "" {
			problems = append(problems, fmt.Sprintf("%s: an explanation is required", name))
		}
	}
	if len(problems) > 0 {
		return errors.New("please complete all responses: " + strings.Join(problems, "; "))
	}
	return nil
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Submit re-validates, uploads staged evidence best-effort, and sends all
// item responses in one request. On failure the form returns to the loaded
// state with drafts intact so the user can retry.
func (c *Controller) Submit(ctx context.Context) error {
	if c.state == StateSubmitting {
		return errors.New("submission already in progress")
	}
	if c.state != StateLoaded {
		return fmt.Errorf("cannot submit in state %s", c.state)
	}
	if c.DeadlinePassed() {
		return errors.New("the response deadline has passed")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	c.state = StateSubmitting

	responses := make([]model.ItemResponse, 0, len(c.items))
	for _, it := range c.items {
		d := c.drafts[it.ID]
		r := model.ItemResponse{
			ItemID:            it.ID,
			Response:          d.Response,
			Explanation:       d.Explanation,
			EvidencePhotos:    c.uploadStaged(ctx, it.ID, model.EvidencePhotos, d.Photos),
			EvidenceDocuments: c.uploadStaged(ctx, it.ID, model.EvidenceDocuments, d.Documents),
		}
		if d.Response == model.ResponsePartialAccept {
			amt, _ := parseAmount(d.CounterAmount)
			r.CounterAmount = &amt
		}
		responses = append(responses, r)
	}

	if err := c.api.SubmitResponses(ctx, c.claimID, responses); err != nil {
		c.state = StateLoaded
		return err
	}

	c.state = StateSubmitted
	c.log.Info("claim responses submitted",
		zap.String("claim_id", c.claimID),
		zap.Int("items", len(responses)),
	)
	if c.nav != nil {
		c.nav.ToDashboard()
	}
	return nil
}

// uploadStaged uploads one category of staged files in parallel. Best-effort:
// individual failures are logged and contribute no references, and never
// abort the submission. Returned references keep file order.
func (c *Controller) uploadStaged(ctx context.Context, itemID string, kind model.EvidenceType, files []StagedFile) []string {
	settled := make([][]string, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f StagedFile) {
			defer wg.Done()
			rc, err := f.Open()
			if err != nil {
				c.log.Warn("evidence file unreadable, skipping",
					zap.String("item_id", itemID), zap.String("file", f.Name), zap.Error(err))
				return
			}
			defer rc.Close()
			refs, err := c.api.UploadEvidence(ctx, itemID, kind, f.Name, f.ContentType, rc)
			if err != nil {
				c.log.Warn("evidence upload failed, skipping",
					zap.String("item_id", itemID), zap.String("file", f.Name), zap.Error(err))
				return
			}
			settled[i] = refs
		}(i, f)
	}
	wg.Wait()

	out := make([]string, 0, len(files))
	for _, refs := range settled {
		out = append(out, refs...)
	}
	return out
}

// SelectEvidence opens the evidence detail view scoped to one item
func (c *Controller) SelectEvidence(itemID string) {
	for _, it := range c.items {
		if it.ID == itemID {
			c.scope = &EvidenceScope{
				ItemID:    it.ID,
				Photos:    it.EvidencePhotos,
				Documents: it.EvidenceDocuments,
			}
			return
		}
	}
}

// ClearEvidence closes the evidence detail view
func (c *Controller) ClearEvidence() {
	c.scope = nil
}

// ViewingEvidence returns the current evidence scope, nil when closed
func (c *Controller) ViewingEvidence() *EvidenceScope {
	return c.scope
}
