package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const statusError = "error"

// shortenRequest is the body of a request to shorten a URL. The URL is not
// checked beyond presence; a missing scheme is completed by the service.
type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required"`
}

type shortenResponse struct {
	URL         string `json:"url"`
	OriginalURL string `json:"originalUrl"`
}

func toShortenResponse(link *entity.ShortenedLink) shortenResponse {
	return shortenResponse{
		URL:         link.URL,
		OriginalURL: link.OriginalURL,
	}
}

type linkResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	OriginalURL string `json:"originalUrl"`
}

func toLinkResponses(links []entity.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, linkResponse{
			ID:          l.ID,
			Code:        l.Code,
			OriginalURL: l.OriginalURL,
		})
	}
	return resp
}

type accessRecordResponse struct {
	ID         int64     `json:"id"`
	AccessedAt time.Time `json:"accessedAt"`
	UserAgent  string    `json:"userAgent"`
	IPAddress  string    `json:"ipAddress"`
}

func toAccessRecordResponses(records []entity.AccessRecord) []accessRecordResponse {
	resp := make([]accessRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, accessRecordResponse{
			ID:         r.ID,
			AccessedAt: r.AccessedAt,
			UserAgent:  r.UserAgent,
			IPAddress:  r.IPAddress,
		})
	}
	return resp
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	linkNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "link not found",
	}

	codeConflictResponse = errorResponse{
		Status:  statusError,
		Message: "could not allocate a short code, try again",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
