package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"sharetome/internal/apiclient"
	"sharetome/internal/http/middleware"
	"sharetome/internal/service"
	"sharetome/internal/upload"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "UNAUTHENTICATED", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// writeDomainError translates errors from the service, backend client and
// upload layers into the error envelope.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apiclient.ErrUnauthenticated):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "sign in required")
	case errors.Is(err, service.ErrTableIDRequired):
		return writeError(c, fiber.StatusBadRequest, "TABLE_ID_REQUIRED", err.Error())
	case errors.Is(err, service.ErrTableNameRequired), errors.Is(err, upload.ErrTableNameRequired):
		return writeError(c, fiber.StatusBadRequest, "TABLE_NAME_REQUIRED", "table name is required")
	case errors.Is(err, upload.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", fileMessage(err, "file exceeds the 50 MiB limit"))
	case errors.Is(err, upload.ErrUnsupportedType):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", fileMessage(err, "only PDF, plain text and Word documents are accepted"))
	case errors.Is(err, upload.ErrBatchNotFound):
		return writeError(c, fiber.StatusNotFound, "BATCH_NOT_FOUND", "upload batch not found")
	case errors.Is(err, upload.ErrFileNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "file not found in batch")
	case errors.Is(err, upload.ErrBatchBusy):
		return writeError(c, fiber.StatusConflict, "BATCH_BUSY", "upload in progress")
	case errors.Is(err, upload.ErrBatchEmpty):
		return writeError(c, fiber.StatusBadRequest, "BATCH_EMPTY", "no files to upload")
	case errors.Is(err, apiclient.ErrRequestFailed):
		return writeUpstreamError(c, err)
	case errors.Is(err, apiclient.ErrNetwork):
		return writeError(c, fiber.StatusBadGateway, "BACKEND_UNREACHABLE", "backend unreachable")
	case errors.Is(err, apiclient.ErrInvalidServerResponse):
		return writeError(c, fiber.StatusBadGateway, "INVALID_SERVER_RESPONSE", "invalid response from backend")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// writeUpstreamError forwards backend 4xx statuses with their message; anything
// else becomes a 502.
func writeUpstreamError(c *fiber.Ctx, err error) error {
	code, _ := apiclient.StatusCode(err)
	var rf *apiclient.RequestFailedError
	msg := http.StatusText(code)
	if errors.As(err, &rf) && rf.Message != "" {
		msg = rf.Message
	}
	if code >= 400 && code < 500 {
		return writeError(c, code, "REQUEST_FAILED", msg)
	}
	return writeError(c, fiber.StatusBadGateway, "REQUEST_FAILED", msg)
}

func fileMessage(err error, fallback string) string {
	var fe *upload.FileError
	if errors.As(err, &fe) {
		return fe.FileName + ": " + fallback
	}
	return fallback
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
