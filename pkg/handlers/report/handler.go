package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/adapters"
	"github.com/de-tools/agri-atlas/pkg/export"
	"github.com/de-tools/agri-atlas/pkg/models/api"
	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/analysis"
	"github.com/de-tools/agri-atlas/pkg/services/assistant"
	"github.com/de-tools/agri-atlas/pkg/sink"
)

var errAssistantDisabled = errors.New("assistant is not configured")

type ReportService interface {
	ReportTypes() []domain.ReportType
	Analyzer(t domain.ReportType) (analysis.Analyzer, error)
	Regions(ctx context.Context) ([]domain.Region, error)
	GenerateReport(ctx context.Context, t domain.ReportType, sel domain.Selection) (*domain.Report, error)
}

type Exporter interface {
	Export(doc *domain.Report, format export.Format) (domain.ExportArtifact, error)
}

type Assistant interface {
	Ask(ctx context.Context, prompt string, sel domain.Selection) (*assistant.Answer, error)
	Predict(ctx context.Context, region string, year int) (*assistant.Answer, error)
}

type Handler struct {
	reports   ReportService
	exporter  Exporter
	assistant Assistant
}

// NewHandler wires the report endpoints. assistant may be nil, in which case
// the assistant endpoints answer 503.
func NewHandler(reports ReportService, exporter Exporter, assistant Assistant) *Handler {
	return &Handler{
		reports:   reports,
		exporter:  exporter,
		assistant: assistant,
	}
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regions, err := h.reports.Regions(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	response := make([]api.Region, 0, len(regions))
	for _, region := range regions {
		response = append(response, adapters.MapRegionDomainToApi(region))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListReportTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	types := h.reports.ReportTypes()
	response := make([]api.ReportType, 0, len(types))
	for _, t := range types {
		a, err := h.reports.Analyzer(t)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		response = append(response, api.ReportType{Type: string(t), Title: a.Title()})
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.generate(w, r)
	if !ok {
		return
	}
	writeJSON(ctx, w, http.StatusOK, adapters.MapReportDomainToApi(doc))
}

// ExportReport encodes the full artifact before writing anything, so a
// failed export yields a JSON error rather than a truncated download.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	doc, ok := h.generate(w, r)
	if !ok {
		return
	}

	artifact, err := h.exporter.Export(doc, format)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if _, err := sink.NewResponseSink(w).Put(ctx, artifact); err != nil {
		logger.Error().
			Err(err).
			Str("filename", artifact.Filename).
			Msg("failed to write export")
		return
	}
	logger.Info().
		Str("filename", artifact.Filename).
		Int("bytes", len(artifact.Content)).
		Msg("report exported")
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.assistant == nil {
		writeError(ctx, w, errAssistantDisabled)
		return
	}

	var req api.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: malformed body: %v", analysis.ErrInvalidSelection, err))
		return
	}
	season, err := domain.ParseSeason(req.Season)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", analysis.ErrInvalidSelection, err))
		return
	}

	answer, err := h.assistant.Ask(ctx, req.Prompt, domain.Selection{Region: req.Region, Year: req.Year, Season: season})
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", errUpstream, err))
		return
	}
	writeJSON(ctx, w, http.StatusOK, api.AssistantResponse{Answer: answer.Text, Raw: answer.Raw})
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.assistant == nil {
		writeError(ctx, w, errAssistantDisabled)
		return
	}

	var req api.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: malformed body: %v", analysis.ErrInvalidSelection, err))
		return
	}
	if req.Region == "" || req.Year <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: region and year are required", analysis.ErrInvalidSelection))
		return
	}

	answer, err := h.assistant.Predict(ctx, req.Region, req.Year)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", errUpstream, err))
		return
	}
	writeJSON(ctx, w, http.StatusOK, api.AssistantResponse{Answer: answer.Text, Raw: answer.Raw})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	ctx := r.Context()

	sel, err := parseSelection(r)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", analysis.ErrInvalidSelection, err))
		return nil, false
	}
	t := domain.ReportType(chi.URLParam(r, "type"))
	doc, err := h.reports.GenerateReport(ctx, t, sel)
	if err != nil {
		writeError(ctx, w, err)
		return nil, false
	}
	return doc, true
}

func parseSelection(r *http.Request) (domain.Selection, error) {
	q := r.URL.Query()

	yearParam := strings.TrimSpace(q.Get("year"))
	if yearParam == "" {
		return domain.Selection{}, fmt.Errorf("year is required")
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil {
		return domain.Selection{}, fmt.Errorf("invalid year %q", yearParam)
	}
	season, err := domain.ParseSeason(q.Get("season"))
	if err != nil {
		return domain.Selection{}, err
	}
	view, err := domain.ParseViewMode(q.Get("view"))
	if err != nil {
		return domain.Selection{}, err
	}
	return domain.Selection{
		Region:   strings.TrimSpace(q.Get("region")),
		Year:     year,
		Season:   season,
		ViewMode: view,
	}, nil
}
