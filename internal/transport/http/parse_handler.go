package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "drillsheet/internal/errors"
	"drillsheet/internal/infrastructure"
	"drillsheet/internal/middleware"
	"drillsheet/pkg/contracts/domain"
)

// multipartOverhead is the allowance for form boundaries and headers on
// top of the workbook size limit.
const multipartOverhead = 1 << 20

// ParseHandler accepts workbook uploads.
type ParseHandler struct {
	service      ParseServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	maxBytes     int64
	logger       *slog.Logger
}

// uploadRequest is the validated form of a multipart upload.
type uploadRequest struct {
	Filename string `json:"filename" validate:"required,workbook"`
}

// ParseResponse is the body of a successful upload. It is returned for
// invalid workbooks too; Result.Validation tells them apart.
type ParseResponse struct {
	Result *domain.ParseResult `json:"result"`
	Job    *domain.ParseJob    `json:"job"`
}

// NewParseHandler creates an upload handler. maxBytes bounds the workbook
// size; zero or less disables the bound.
func NewParseHandler(service ParseServiceInterface, maxBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ParseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseHandler{
		service:      service,
		validator:    middleware.NewValidator(),
		errorHandler: errorHandler,
		maxBytes:     maxBytes,
		logger:       logger.With(slog.String("handler", "parse")),
	}
}

// Routes returns the upload routes.
func (h *ParseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
	r.Post("/", h.Upload)
	return r
}

// Upload handles POST /api/parse
func (h *ParseHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile):
			h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		default:
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.errorHandler.HandleError(w, r, err)
				return
			}
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return
	}
	defer file.Close()

	req := uploadRequest{Filename: header.Filename}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	infrastructure.LoggerWithContext(ctx, h.logger).InfoContext(ctx, "workbook uploaded",
		slog.String("file", req.Filename),
		slog.Int64("size", header.Size),
	)

	res, job, err := h.service.Parse(ctx, req.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ParseResponse{Result: res, Job: job})
}
