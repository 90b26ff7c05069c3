package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "drillsheet/internal/errors"
	"drillsheet/internal/infrastructure"
	"drillsheet/internal/middleware"
	"drillsheet/internal/store"
	"drillsheet/pkg/contracts/domain"
)

// defaultJobLimit applies when /api/jobs has no limit parameter.
const defaultJobLimit = 50

type ctxKey string

const testCtxKey ctxKey = "discharge_test"

// DataHandler serves stored records with RFC 7807 errors.
type DataHandler struct {
	records      RecordReader
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// TestResponse is a discharge test with the records around it.
type TestResponse struct {
	Test     *domain.DischargeTest `json:"test"`
	Site     *domain.Site          `json:"site,omitempty"`
	Borehole *domain.Borehole      `json:"borehole,omitempty"`
	Quality  []domain.Quality      `json:"quality"`
}

type jobsQuery struct {
	Limit  int    `json:"limit" validate:"min=1,max=500"`
	Status string `json:"status" validate:"omitempty,oneof=parsed failed"`
}

// NewDataHandler creates a record handler.
func NewDataHandler(records RecordReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		records:      records,
		validator:    middleware.NewValidator(),
		logger:       infrastructure.WithComponent(logger, "data_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the record routes, mounted under /api.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.NotFound(h.errorHandler.NotFound)
	r.MethodNotAllowed(h.errorHandler.MethodNotAllowed)

	r.Route("/tests/{testID}", func(r chi.Router) {
		r.Use(h.TestCtx)
		r.Get("/", h.GetTest)
		r.Get("/series", h.GetSeries)
	})
	r.Get("/reports/{reportID}", h.GetReport)
	r.Get("/jobs", h.ListJobs)
	return r
}

// TestCtx loads the test named in the URL into the request context.
func (h *DataHandler) TestCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		if testID == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("testID", "test ID is required"))
			return
		}

		test, err := h.records.GetTest(r.Context(), testID)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), testCtxKey, test)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func testFromContext(ctx context.Context) *domain.DischargeTest {
	test, _ := ctx.Value(testCtxKey).(*domain.DischargeTest)
	return test
}

// GetTest handles GET /api/tests/{testID}
func (h *DataHandler) GetTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	test := testFromContext(ctx)

	resp := TestResponse{Test: test}

	// A test is always stored with its site and borehole; a missing one
	// is reported but does not fail the request.
	logger := infrastructure.LoggerWithContext(ctx, h.logger)
	if site, err := h.records.GetSite(ctx, test.SiteID); err == nil {
		resp.Site = site
	} else {
		infrastructure.WithError(logger, err).WarnContext(ctx, "site lookup failed", slog.String("site_id", test.SiteID))
	}
	if bh, err := h.records.GetBorehole(ctx, test.SiteID, test.BoreholeID); err == nil {
		resp.Borehole = bh
	} else {
		infrastructure.WithError(logger, err).WarnContext(ctx, "borehole lookup failed", slog.String("borehole_id", test.BoreholeID))
	}

	quality, err := h.records.ListQuality(ctx, test.TestID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	resp.Quality = nonNil(quality)

	render.JSON(w, r, resp)
}

// GetSeries handles GET /api/tests/{testID}/series
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	test := testFromContext(r.Context())

	series, err := h.records.ListSeries(r.Context(), test.TestID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"testId": test.TestID,
		"series": nonNil(series),
		"count":  len(series),
	})
}

// GetReport handles GET /api/reports/{reportID}
func (h *DataHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.records.GetReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// ListJobs handles GET /api/jobs
func (h *DataHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := jobsQuery{
		Limit:  defaultJobLimit,
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "limit must be an integer"))
			return
		}
		q.Limit = limit
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	jobs, err := h.records.ListJobs(r.Context(), store.JobFilter{
		Status: domain.ParseJobStatus(q.Status),
		Limit:  q.Limit,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"jobs":  nonNil(jobs),
		"count": len(jobs),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
