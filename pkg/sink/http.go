package sink

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// ResponseSink streams an artifact as a download on an HTTP response.
type ResponseSink struct {
	w http.ResponseWriter
}

func NewResponseSink(w http.ResponseWriter) *ResponseSink {
	return &ResponseSink{w: w}
}

func (s *ResponseSink) Put(_ context.Context, artifact domain.ExportArtifact) (string, error) {
	h := s.w.Header()
	h.Set("Content-Type", artifact.MimeType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	s.w.WriteHeader(http.StatusOK)
	if _, err := s.w.Write(artifact.Content); err != nil {
		return "", fmt.Errorf("failed to write response: %w", err)
	}
	return artifact.Filename, nil
}
