package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"depositdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/deposits/claims/case-1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(model.ClaimBundle{
			Success:         true,
			PropertyAddress: "12 Harbor Lane",
			Claims: []model.ClaimItem{
				{ID: "a", Title: "cleaning_fee", ClaimedAmount: 100, Status: model.StatusSubmitted},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", zap.NewNop())
	bundle, err := c.FetchBundle(context.Background(), "case-1")
	require.NoError(t, err)
	assert.True(t, bundle.Success)
	assert.Equal(t, "12 Harbor Lane", bundle.PropertyAddress)
	require.Len(t, bundle.Claims, 1)
	assert.Equal(t, model.StatusSubmitted, bundle.Claims[0].Status)
}

func TestFetchBundle_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	_, err := c.FetchBundle(context.Background(), "case-1")
	assert.Error(t, err)
}

func TestUploadEvidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deposits/claims/item-1/response-evidence", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "evidence_photos", r.FormValue("evidence_type"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "hall.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "jpegbytes", string(content))

		json.NewEncoder(w).Encode(model.EvidenceUploadResult{Files: []string{"01ABC.jpg"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	refs, err := c.UploadEvidence(context.Background(), "item-1", model.EvidencePhotos,
		"hall.jpg", "image/jpeg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"01ABC.jpg"}, refs)
}

func TestUploadEvidence_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	_, err := c.UploadEvidence(context.Background(), "item-1", model.EvidenceDocuments,
		"doc.pdf", "application/pdf", strings.NewReader("pdf"))
	assert.Error(t, err)
}

func TestSubmitResponses(t *testing.T) {
	counter := 40.0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deposits/claims/case-1/respond", r.URL.Path)

		var req model.RespondRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Responses, 1)
		assert.Equal(t, "a", req.Responses[0].ItemID)
		require.NotNil(t, req.Responses[0].CounterAmount)
		assert.InDelta(t, 40, *req.Responses[0].CounterAmount, 0.001)

		json.NewEncoder(w).Encode(model.RespondResult{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	err := c.SubmitResponses(context.Background(), "case-1", []model.ItemResponse{{
		ItemID:            "a",
		Response:          model.ResponsePartialAccept,
		CounterAmount:     &counter,
		Explanation:       "partial damage",
		EvidencePhotos:    []string{},
		EvidenceDocuments: []string{},
	}})
	assert.NoError(t, err)
}

func TestSubmitResponses_ServerReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.RespondResult{Success: false, Error: "deadline has passed"})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	err := c.SubmitResponses(context.Background(), "case-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline has passed")
}

func TestSubmitResponses_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html><body>502 Bad Gateway</body></html>")
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	err := c.SubmitResponses(context.Background(), "case-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestEvidenceURLs(t *testing.T) {
	c := New("https://api.example.com/", "", zap.NewNop())
	assert.Equal(t, "https://api.example.com/api/deposits/evidence/view/01ABC.jpg", c.EvidenceViewURL("01ABC.jpg"))
	assert.Equal(t, "https://api.example.com/api/deposits/evidence/download/01ABC.jpg", c.EvidenceDownloadURL("01ABC.jpg"))
}
