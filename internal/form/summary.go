package form

import (
	"depositdesk/internal/model"
)

// Summary holds the totals recomputed from the currently displayed claim set
type Summary struct {
	TotalClaimed    float64
	TotalAccepted   float64
	TotalDisputed   float64
	EstimatedRefund float64
	TenantView      bool
}

// Summary computes claimed, accepted, and disputed totals. Items already
// responded contribute their recorded outcome; editable items contribute
// their live draft. The estimated refund is tenant-view only.
func (c *Controller) Summary() Summary {
	var s Summary
	for _, it := range c.items {
		s.TotalClaimed += it.ClaimedAmount
		accepted := c.acceptedAmount(it)
		s.TotalAccepted += accepted
		s.TotalDisputed += it.ClaimedAmount - accepted
	}
	if c.session != nil && c.session.IsTenant() {
		s.TenantView = true
		s.EstimatedRefund = c.page.DepositAmount - s.TotalAccepted
	}
	return s
}

func (c *Controller) acceptedAmount(it model.ClaimItem) float64 {
	if !it.AwaitingAction() {
		switch it.TenantResponse {
		case model.ResponseAccept:
			return it.ClaimedAmount
		case model.ResponsePartialAccept:
			if it.TenantCounterAmount != nil {
				return *it.TenantCounterAmount
			}
		}
		return 0
	}

	d := c.drafts[it.ID]
	switch d.Response {
	case model.ResponseAccept:
		return it.ClaimedAmount
	case model.ResponsePartialAccept:
		if amt, err := parseAmount(d.CounterAmount); err == nil && amt > 0 {
			return amt
		}
	}
	return 0
}
