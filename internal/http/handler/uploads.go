package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"sharetome/internal/http/middleware"
	"sharetome/internal/model"
	"sharetome/internal/service"
	"sharetome/internal/upload"
)

// UploadPipeline is the batch lifecycle the upload endpoints drive.
type UploadPipeline interface {
	Open(sess *model.Session, tableName string) (*upload.Batch, error)
	Batch(sess *model.Session, batchID string) (*upload.Batch, error)
	Stage(ctx context.Context, sess *model.Session, batchID string, in upload.Incoming) (*upload.File, error)
	Remove(ctx context.Context, sess *model.Session, batchID, fileID string) error
	Discard(ctx context.Context, sess *model.Session, batchID string) error
	Submit(ctx context.Context, sess *model.Session, batchID string) (*model.CreateTableResult, error)
}

type openBatchRequest struct {
	TableName   string `json:"table_name"`
	CreateTable bool   `json:"create_table"`
}

type submitResponse struct {
	TableID string          `json:"table_id"`
	Batch   upload.Snapshot `json:"batch"`
}

// OpenBatch godoc
// @Summary Open an upload batch for a table
// @Description With create_table the table is created first; otherwise files are added to an existing table.
// @Tags uploads
// @Accept json
// @Produce json
// @Param body body openBatchRequest true "batch"
// @Success 201 {object} upload.Snapshot
// @Failure 400 {object} errorPayload
// @Router /api/uploads [post]
func OpenBatch(tables service.TableService, uploads UploadPipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req openBatchRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess := middleware.SessionFromCtx(c)
		if req.CreateTable {
			if _, err := tables.CreateTable(c.UserContext(), sess, model.CreateTableInput{TableName: req.TableName}); err != nil {
				return writeDomainError(c, err)
			}
		}
		b, err := uploads.Open(sess, req.TableName)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b.Snapshot())
	}
}

// GetBatch godoc
// @Summary Get batch state and per-file progress
// @Tags uploads
// @Produce json
// @Param batch path string true "batch id"
// @Success 200 {object} upload.Snapshot
// @Failure 404 {object} errorPayload
// @Router /api/uploads/{batch} [get]
func GetBatch(uploads UploadPipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := uploads.Batch(middleware.SessionFromCtx(c), c.Params("batch"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(b.Snapshot())
	}
}

// StageFiles godoc
// @Summary Add files to a batch
// @Description Multipart form, field "files", one or more parts. Every file is validated before any is staged; one invalid file rejects the whole request.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param batch path string true "batch id"
// @Success 200 {object} upload.Snapshot
// @Failure 413 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Router /api/uploads/{batch}/files [post]
func StageFiles(uploads UploadPipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		b, err := uploads.Batch(sess, c.Params("batch"))
		if err != nil {
			return writeDomainError(c, err)
		}

		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "multipart form with files is required")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "files are required")
		}

		// Validate every part before staging any, so a bad file rejects the whole selection.
		for _, fh := range headers {
			ct, err := partType(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "cannot read uploaded file")
			}
			if err := upload.ValidateFile(fh.Filename, ct, fh.Size); err != nil {
				return writeDomainError(c, err)
			}
		}

		staged := make([]string, 0, len(headers))
		for _, fh := range headers {
			f, err := stageOne(c.UserContext(), uploads, sess, b.ID(), fh)
			if err != nil {
				unstage(c.UserContext(), uploads, sess, b.ID(), staged)
				return writeDomainError(c, err)
			}
			staged = append(staged, f.ID)
		}
		return c.JSON(b.Snapshot())
	}
}

// partType is the declared type of a part, or the sniffed one when the
// browser declared nothing useful.
func partType(fh *multipart.FileHeader) (string, error) {
	ct := declaredType(fh)
	if !upload.NeedsSniffing(ct) {
		return ct, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, upload.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	return upload.DetectContentType(ct, head[:n]), nil
}

// unstage drops the files a failed request already added.
func unstage(ctx context.Context, uploads UploadPipeline, sess *model.Session, batchID string, fileIDs []string) {
	for _, id := range fileIDs {
		_ = uploads.Remove(ctx, sess, batchID, id)
	}
}

func stageOne(ctx context.Context, uploads UploadPipeline, sess *model.Session, batchID string, fh *multipart.FileHeader) (*upload.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return uploads.Stage(ctx, sess, batchID, upload.Incoming{
		Name:        fh.Filename,
		ContentType: declaredType(fh),
		Size:        fh.Size,
		Body:        f,
	})
}

// declaredType is the browser-declared type of a part.
func declaredType(fh *multipart.FileHeader) string {
	return fh.Header.Get(fiber.HeaderContentType)
}

// RemoveFile godoc
// @Summary Remove a staged file
// @Tags uploads
// @Param batch path string true "batch id"
// @Param file path string true "file id"
// @Success 200 {object} upload.Snapshot
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/uploads/{batch}/files/{file} [delete]
func RemoveFile(uploads UploadPipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		if err := uploads.Remove(c.UserContext(), sess, c.Params("batch"), c.Params("file")); err != nil {
			return writeDomainError(c, err)
		}
		b, err := uploads.Batch(sess, c.Params("batch"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(b.Snapshot())
	}
}

// SubmitBatch godoc
// @Summary Upload every staged file and attach them to the table
// @Tags uploads
// @Produce json
// @Param batch path string true "batch id"
// @Success 200 {object} submitResponse
// @Failure 409 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/uploads/{batch}/submit [post]
func SubmitBatch(uploads UploadPipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		b, err := uploads.Batch(sess, c.Params("batch"))
		if err != nil {
			return writeDomainError(c, err)
		}
		res, err := uploads.Submit(c.UserContext(), sess, b.ID())
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(submitResponse{TableID: res.TableID, Batch: b.Snapshot()})
	}
}

// DiscardBatch godoc
// @Summary Close the upload dialog and drop staged files
// @Tags uploads
// @Param batch path string true "batch id"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /api/uploads/{batch} [delete]
func DiscardBatch(uploads UploadPipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := uploads.Discard(c.UserContext(), middleware.SessionFromCtx(c), c.Params("batch")); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
