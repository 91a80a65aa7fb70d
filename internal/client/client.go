package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"depositdesk/internal/model"

	"go.uber.org/zap"
)

// Client talks to the deposits claims API. It implements the outbound calls
// the response form depends on: bundle fetch, per-item evidence upload,
// aggregate respond, and evidence retrieval URLs.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL, token string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
		log:     log,
	}
}

// SetHTTPClient overrides the underlying HTTP client, mainly for tests
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// FetchBundle loads the claim bundle for a claim identifier. Transport
// failures and non-2xx statuses are returned as errors; a decoded bundle
// with Success=false is returned to the caller for page-level handling.
func (c *Client) FetchBundle(ctx context.Context, claimID string) (*model.ClaimBundle, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/deposits/claims/"+claimID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claim bundle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("claim bundle request returned status %d", resp.StatusCode)
	}

	var bundle model.ClaimBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode claim bundle: %w", err)
	}
	return &bundle, nil
}

// UploadEvidence posts one staged file to the per-item evidence endpoint and
// returns the server-assigned file references.
func (c *Client) UploadEvidence(ctx context.Context, itemID string, evidenceType model.EvidenceType, name, contentType string, r io.Reader) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("files", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	if err := mw.WriteField("evidence_type", string(evidenceType)); err != nil {
		return nil, fmt.Errorf("failed to write evidence_type field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/deposits/claims/"+itemID+"/response-evidence", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evidence upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("evidence upload returned status %d", resp.StatusCode)
	}

	var result model.EvidenceUploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload result: %w", err)
	}
	return result.Files, nil
}

// SubmitResponses sends all item responses in one request to the claim's
// respond endpoint.
func (c *Client) SubmitResponses(ctx context.Context, claimID string, responses []model.ItemResponse) error {
	body, err := json.Marshal(model.RespondRequest{Responses: responses})
	if err != nil {
		return fmt.Errorf("failed to encode responses: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/deposits/claims/"+claimID+"/respond", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("respond request failed: %w", err)
	}
	defer resp.Body.Close()

	// Error bodies are not guaranteed to be JSON (proxies return HTML), so
	// the status decides first and the decoded message only refines it.
	var result model.RespondResult
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("respond request returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("submission rejected: %s", msg)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode respond result: %w", decodeErr)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "server reported failure"
		}
		return fmt.Errorf("submission rejected: %s", msg)
	}
	return nil
}

// EvidenceViewURL returns the inline retrieval URL for a stored evidence file
func (c *Client) EvidenceViewURL(filename string) string {
	return c.baseURL + "/api/deposits/evidence/view/" + filename
}

// EvidenceDownloadURL returns the attachment retrieval URL for a stored
// evidence file
func (c *Client) EvidenceDownloadURL(filename string) string {
	return c.baseURL + "/api/deposits/evidence/download/" + filename
}
