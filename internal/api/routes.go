package api

import (
	"context"
	"io"
	"net/http"
	"os"

	"depositdesk/internal/auth"
	"depositdesk/internal/db"
	"depositdesk/internal/model"
	"depositdesk/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClaimsService is the handlers' view of the claim service
type ClaimsService interface {
	LoadBundle(ctx context.Context, caseID string) (*model.ClaimBundle, error)
	ApplyResponses(ctx context.Context, caseID string, payload map[string]interface{}) error
	SaveEvidence(ctx context.Context, itemID string, kind model.EvidenceType, up service.EvidenceUpload) (string, error)
	OpenEvidence(ctx context.Context, name string) (db.EvidenceFile, io.ReadCloser, error)
}

type Dependencies struct {
	Claims ClaimsService
	Log    *zap.Logger
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(d.Log))

	jwtConfig := auth.NewJWTConfig(os.Getenv("JWT_SECRET"))
	r.Use(jwtConfig.Middleware)

	r.Route("/api/deposits", func(r chi.Router) {
		// {id} is the case identifier for the bundle and respond routes,
		// and the item identifier for the evidence route.
		r.Get("/claims/{id}", d.getClaimBundle)
		r.Post("/claims/{id}/respond", d.respond)
		r.Post("/claims/{id}/response-evidence", d.uploadEvidence)

		r.Get("/evidence/view/{filename}", d.viewEvidence)
		r.Get("/evidence/download/{filename}", d.downloadEvidence)
	})

	return r
}
