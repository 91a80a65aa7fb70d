package form

import (
	"io"

	"depositdesk/internal/model"
)

// StagedFile is a locally selected evidence file awaiting upload. Selection
// records name, size, and type plus a handle to the raw content; nothing is
// sent until submission.
type StagedFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Draft is the client-only, unsaved reply to one claim item. The counter
// amount stays a string until submission parses it.
type Draft struct {
	Response      model.ResponseChoice
	CounterAmount string
	Explanation   string
	Photos        []StagedFile
	Documents     []StagedFile
}

// updateDraft replaces one item's draft through a whole-map copy, leaving
// every other draft and all claim data untouched.
func (c *Controller) updateDraft(itemID string, fn func(Draft) Draft) {
	if c.state != StateLoaded {
		return
	}
	d, ok := c.drafts[itemID]
	if !ok {
		return
	}
	next := make(map[string]Draft, len(c.drafts))
	for k, v := range c.drafts {
		next[k] = v
	}
	next[itemID] = fn(d)
	c.drafts = next
}

// SetResponse records the response choice for one item
func (c *Controller) SetResponse(itemID string, choice model.ResponseChoice) {
	c.updateDraft(itemID, func(d Draft) Draft {
		d.Response = choice
		return d
	})
}

// SetCounterAmount records the raw counter amount text for one item
func (c *Controller) SetCounterAmount(itemID, amount string) {
	c.updateDraft(itemID, func(d Draft) Draft {
		d.CounterAmount = amount
		return d
	})
}

// SetExplanation records the explanation text for one item
func (c *Controller) SetExplanation(itemID, text string) {
	c.updateDraft(itemID, func(d Draft) Draft {
		d.Explanation = text
		return d
	})
}

// StageEvidence appends selected files to one item's staged evidence list.
// No network call happens here.
func (c *Controller) StageEvidence(itemID string, kind model.EvidenceType, files ...StagedFile) {
	c.updateDraft(itemID, func(d Draft) Draft {
		switch kind {
		case model.EvidencePhotos:
			d.Photos = append(append([]StagedFile(nil), d.Photos...), files...)
		case model.EvidenceDocuments:
			d.Documents = append(append([]StagedFile(nil), d.Documents...), files...)
		}
		return d
	})
}
