package handler

import (
	"github.com/gofiber/fiber/v2"

	"sharetome/internal/http/middleware"
	"sharetome/internal/model"
	"sharetome/internal/service"
)

type createTableRequest struct {
	TableName string `json:"table_name"`
	IsPublic  bool   `json:"is_public"`
}

type visibilityRequest struct {
	IsPublic *bool `json:"is_public"`
}

// ListTables godoc
// @Summary List the caller's tables
// @Tags tables
// @Produce json
// @Success 200 {array} model.Table
// @Failure 401 {object} errorPayload
// @Router /api/tables [get]
func ListTables(svc service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tables, err := svc.ListUserTables(c.UserContext(), middleware.SessionFromCtx(c))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(tables)
	}
}

// CreateTable godoc
// @Summary Create an empty table
// @Tags tables
// @Accept json
// @Produce json
// @Param body body createTableRequest true "table"
// @Success 201 {object} model.CreateTableResult
// @Failure 400 {object} errorPayload
// @Router /api/tables [post]
func CreateTable(svc service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createTableRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svc.CreateTable(c.UserContext(), middleware.SessionFromCtx(c), model.CreateTableInput{
			TableName: req.TableName,
			IsPublic:  req.IsPublic,
		})
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetTable godoc
// @Summary Get a table the caller owns or that is public
// @Tags tables
// @Produce json
// @Param id path string true "table id"
// @Success 200 {object} model.Table
// @Failure 404 {object} errorPayload
// @Router /api/tables/{id} [get]
func GetTable(svc service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := svc.GetTable(c.UserContext(), middleware.SessionFromCtx(c), c.Params("id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(t)
	}
}

// UpdateVisibility godoc
// @Summary Make a table public or private
// @Tags tables
// @Accept json
// @Param id path string true "table id"
// @Param body body visibilityRequest true "visibility"
// @Success 204
// @Failure 400 {object} errorPayload
// @Router /api/tables/{id}/visibility [patch]
func UpdateVisibility(svc service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req visibilityRequest
		if err := c.BodyParser(&req); err != nil || req.IsPublic == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "is_public is required")
		}
		if err := svc.UpdateVisibility(c.UserContext(), middleware.SessionFromCtx(c), c.Params("id"), *req.IsPublic); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListDocuments godoc
// @Summary List or search a table's documents
// @Description A blank q lists every document instead of searching.
// @Tags tables
// @Produce json
// @Param id path string true "table id"
// @Param q query string false "search query"
// @Success 200 {array} model.Document
// @Router /api/tables/{id}/documents [get]
func ListDocuments(svc service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.SearchDocuments(c.UserContext(), middleware.SessionFromCtx(c), c.Query("q"), c.Params("id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(docs)
	}
}
