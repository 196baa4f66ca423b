package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifelogapp/lifelog-server/internal/preview"
)

func (s *Server) registerPreviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLinkPreview",
		Method:      http.MethodGet,
		Path:        "/api/v1/preview",
		Summary:     "Link preview",
		Description: "Fetches a page and returns its title, description, image and site name",
		Tags:        []string{"Preview"},
	}, s.handleGetPreview)
}

// PreviewInput contains the page to preview.
type PreviewInput struct {
	URL string `query:"url" doc:"Absolute http or https URL" example:"https://example.com/article"`
}

// PreviewOutput wraps a preview for Huma.
type PreviewOutput struct {
	Body *preview.Preview
}

func (s *Server) handleGetPreview(ctx context.Context, input *PreviewInput) (*PreviewOutput, error) {
	p, err := s.services.Preview.Fetch(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	return &PreviewOutput{Body: p}, nil
}
