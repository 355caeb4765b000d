package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/shortcode"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type linkUseCase interface {
	CreateLink(ctx context.Context, originalURL string) (*entity.ShortenedLink, error)
	GetOriginalURL(ctx context.Context, code string) (string, error)
	DeleteLink(ctx context.Context, code string) error
	GetStats(ctx context.Context, code string) ([]entity.AccessRecord, error)
	FindAll(ctx context.Context) ([]entity.Link, error)
}

type accessRecorder interface {
	Record(ctx context.Context, ev entity.AccessEvent) error
}

type linkHandler struct {
	useCase  linkUseCase
	recorder accessRecorder
	validate *validator.Validate
}

func newLinkHandler(useCase linkUseCase, recorder accessRecorder, validate *validator.Validate) *linkHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &linkHandler{
		useCase:  useCase,
		recorder: recorder,
		validate: validate,
	}
}

// renderError writes the response for an error returned by the link service.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrLinkNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, linkNotFoundResponse)
	case errors.Is(err, entity.ErrValidation):
		msg := "validation error"
		var se *entity.ServiceError
		if errors.As(err, &se) {
			msg = se.Message
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Status: statusError, Message: msg})
	case errors.Is(err, entity.ErrCodeGenerationExhausted):
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusConflict)
		render.JSON(w, r, codeConflictResponse)
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
	}
}

// codeParam returns the {code} route parameter. Malformed codes cannot exist
// in the store, so they are answered with 404 right away.
func codeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := chi.URLParam(r, "code")
	if !shortcode.Valid(code) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, linkNotFoundResponse)
		return "", false
	}
	return code, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *linkHandler) findAll(w http.ResponseWriter, r *http.Request) {
	links, err := h.useCase.FindAll(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkResponses(links))
}

func (h *linkHandler) shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	link, err := h.useCase.CreateLink(r.Context(), req.OriginalURL)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toShortenResponse(link))
}

func (h *linkHandler) remove(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	if err := h.useCase.DeleteLink(r.Context(), code); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// redirect resolves the code, records the access and redirects. A recording
// failure other than a vanished link does not fail the redirect.
func (h *linkHandler) redirect(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	originalURL, err := h.useCase.GetOriginalURL(r.Context(), code)
	if err != nil {
		renderError(w, r, err)
		return
	}

	err = h.recorder.Record(r.Context(), entity.AccessEvent{
		Code:      code,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			renderError(w, r, err)
			return
		}

		httplog.LogEntrySetField(r.Context(), "record_err", slog.AnyValue(err))
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

func (h *linkHandler) stats(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	records, err := h.useCase.GetStats(r.Context(), code)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAccessRecordResponses(records))
}
