package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"depositdesk/internal/db"
	"depositdesk/internal/model"
	"depositdesk/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubClaims implements ClaimsService for handler tests
type stubClaims struct {
	bundle     *model.ClaimBundle
	bundleErr  error
	applyErr   error
	applied    []map[string]interface{}
	savedName  string
	saveErr    error
	saved      []service.EvidenceUpload
	evidence   db.EvidenceFile
	evidenceRC io.ReadCloser
	openErr    error
}

func (s *stubClaims) LoadBundle(ctx context.Context, caseID string) (*model.ClaimBundle, error) {
	if s.bundleErr != nil {
		return nil, s.bundleErr
	}
	return s.bundle, nil
}

func (s *stubClaims) ApplyResponses(ctx context.Context, caseID string, payload map[string]interface{}) error {
	s.applied = append(s.applied, payload)
	return s.applyErr
}

func (s *stubClaims) SaveEvidence(ctx context.Context, itemID string, kind model.EvidenceType, up service.EvidenceUpload) (string, error) {
	s.saved = append(s.saved, up)
	if s.saveErr != nil {
		return "", s.saveErr
	}
	return s.savedName, nil
}

func (s *stubClaims) OpenEvidence(ctx context.Context, name string) (db.EvidenceFile, io.ReadCloser, error) {
	if s.openErr != nil {
		return db.EvidenceFile{}, nil, s.openErr
	}
	return s.evidence, s.evidenceRC, nil
}

func newTestServer(t *testing.T, claims *stubClaims) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Routes(Dependencies{Claims: claims, Log: zap.NewNop()}))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, role, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if role != "" {
		req.Header.Set("X-Role", role)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetClaimBundle(t *testing.T) {
	claims := &stubClaims{bundle: &model.ClaimBundle{
		Success:         true,
		PropertyAddress: "12 Harbor Lane",
		Claims:          []model.ClaimItem{{ID: "a", Status: model.StatusSubmitted}},
	}}
	srv := newTestServer(t, claims)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/deposits/claims/case-1", "tenant", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bundle model.ClaimBundle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bundle))
	assert.True(t, bundle.Success)
	assert.Len(t, bundle.Claims, 1)
}

func TestGetClaimBundle_RequiresAuth(t *testing.T) {
	srv := newTestServer(t, &stubClaims{})
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/deposits/claims/case-1", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetClaimBundle_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubClaims{bundleErr: assert.AnError})
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/deposits/claims/case-9", "tenant", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var result model.RespondResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRespond(t *testing.T) {
	claims := &stubClaims{}
	srv := newTestServer(t, claims)

	body := `{"responses":[{"item_id":"a","response":"accept","counter_amount":null,"explanation":"","evidence_photos":[],"evidence_documents":[]}]}`
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/deposits/claims/case-1/respond", "tenant", "application/json", strings.NewReader(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.RespondResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Len(t, claims.applied, 1)
}

func TestRespond_LandlordForbidden(t *testing.T) {
	claims := &stubClaims{}
	srv := newTestServer(t, claims)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/deposits/claims/case-1/respond", "landlord", "application/json", strings.NewReader(`{"responses":[]}`))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, claims.applied)
}

func TestRespond_ServiceRejection(t *testing.T) {
	claims := &stubClaims{applyErr: assert.AnError}
	srv := newTestServer(t, claims)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/deposits/claims/case-1/respond", "tenant", "application/json", strings.NewReader(`{"responses":[]}`))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result model.RespondResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
}

func multipartBody(t *testing.T, evidenceType, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("evidence_type", evidenceType))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadEvidence(t *testing.T) {
	claims := &stubClaims{savedName: "01ABC.jpg"}
	srv := newTestServer(t, claims)

	body, contentType := multipartBody(t, "evidence_photos", "hall.jpg", "jpegbytes")
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/deposits/claims/item-1/response-evidence", "tenant", contentType, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.EvidenceUploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"01ABC.jpg"}, result.Files)

	require.Len(t, claims.saved, 1)
	assert.Equal(t, "hall.jpg", claims.saved[0].Filename)
}

func TestUploadEvidence_UnknownCategory(t *testing.T) {
	srv := newTestServer(t, &stubClaims{})
	body, contentType := multipartBody(t, "evidence_videos", "clip.mp4", "bytes")
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/deposits/claims/item-1/response-evidence", "tenant", contentType, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestViewAndDownloadEvidence(t *testing.T) {
	claims := &stubClaims{
		evidence: db.EvidenceFile{
			Name:         "01ABC.jpg",
			OriginalName: "hall.jpg",
			ContentType:  "image/jpeg",
			SizeBytes:    9,
		},
	}
	srv := newTestServer(t, claims)

	claims.evidenceRC = io.NopCloser(strings.NewReader("jpegbytes"))
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/deposits/evidence/view/01ABC.jpg", "landlord", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("Content-Disposition"))

	claims.evidenceRC = io.NopCloser(strings.NewReader("jpegbytes"))
	resp = doRequest(t, http.MethodGet, srv.URL+"/api/deposits/evidence/download/01ABC.jpg", "tenant", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="hall.jpg"`)
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(content))
}
