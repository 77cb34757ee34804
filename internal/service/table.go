package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"sharetome/internal/apiclient"
	"sharetome/internal/model"
)

var (
	ErrTableIDRequired   = errors.New("table id is required")
	ErrTableNameRequired = errors.New("table name is required")
)

// Backend is the subset of the backend client the table service relies on.
type Backend interface {
	Request(ctx context.Context, sess *model.Session, endpoint string, opts apiclient.RequestOptions, out any) error
	ResolveReadable(ctx context.Context, sess *model.Session, endpoint string, out any) error
}

// TableService defines the table and document use cases.
// Reads that may target a shared table resolve through the public fallback;
// writes and the caller's own table list always require a session.
type TableService interface {
	// ListUserTables returns the tables owned by the session principal.
	ListUserTables(ctx context.Context, sess *model.Session) ([]model.Table, error)

	// GetTable returns a table's metadata, owned or public.
	GetTable(ctx context.Context, sess *model.Session, tableID string) (*model.Table, error)

	// CreateTable creates a table, or with SkipTableCreation attaches documents to an existing one.
	CreateTable(ctx context.Context, sess *model.Session, in model.CreateTableInput) (*model.CreateTableResult, error)

	// ListDocuments returns every document of a table.
	ListDocuments(ctx context.Context, sess *model.Session, tableID string) ([]model.Document, error)

	// SearchDocuments returns documents ranked by the backend. A blank query lists all documents instead.
	SearchDocuments(ctx context.Context, sess *model.Session, query, tableID string) ([]model.Document, error)

	// UpdateVisibility makes a table public or private.
	UpdateVisibility(ctx context.Context, sess *model.Session, tableID string, isPublic bool) error
}

type tableService struct {
	backend Backend
}

// NewTableService constructs a new TableService.
func NewTableService(backend Backend) TableService {
	return &tableService{backend: backend}
}

func (s *tableService) ListUserTables(ctx context.Context, sess *model.Session) ([]model.Table, error) {
	var raw []tableWire
	if err := s.backend.Request(ctx, sess, "/tables", apiclient.RequestOptions{Method: http.MethodGet}, &raw); err != nil {
		return nil, err
	}
	tables := make([]model.Table, 0, len(raw))
	for _, t := range raw {
		tables = append(tables, t.toModel())
	}
	return tables, nil
}

func (s *tableService) GetTable(ctx context.Context, sess *model.Session, tableID string) (*model.Table, error) {
	if tableID == "" {
		return nil, ErrTableIDRequired
	}
	var raw tableWire
	endpoint := "/table?" + url.Values{"table_id": {tableID}}.Encode()
	if err := s.backend.ResolveReadable(ctx, sess, endpoint, &raw); err != nil {
		return nil, err
	}
	t := raw.toModel()
	return &t, nil
}

func (s *tableService) CreateTable(ctx context.Context, sess *model.Session, in model.CreateTableInput) (*model.CreateTableResult, error) {
	in.TableName = strings.TrimSpace(in.TableName)
	if in.TableName == "" {
		return nil, ErrTableNameRequired
	}
	var res model.CreateTableResult
	err := s.backend.Request(ctx, sess, "/create_table", apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   in,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *tableService) ListDocuments(ctx context.Context, sess *model.Session, tableID string) ([]model.Document, error) {
	if tableID == "" {
		return nil, ErrTableIDRequired
	}
	endpoint := "/es/all?" + url.Values{"table_id": {tableID}}.Encode()
	return s.readDocuments(ctx, sess, endpoint)
}

func (s *tableService) SearchDocuments(ctx context.Context, sess *model.Session, query, tableID string) ([]model.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListDocuments(ctx, sess, tableID)
	}
	if tableID == "" {
		return nil, ErrTableIDRequired
	}
	endpoint := "/es/search?" + url.Values{"q": {query}, "table_id": {tableID}}.Encode()
	return s.readDocuments(ctx, sess, endpoint)
}

func (s *tableService) UpdateVisibility(ctx context.Context, sess *model.Session, tableID string, isPublic bool) error {
	if tableID == "" {
		return ErrTableIDRequired
	}
	return s.backend.Request(ctx, sess, "/table/"+url.PathEscape(tableID)+"/visibility", apiclient.RequestOptions{
		Method: http.MethodPatch,
		Body:   map[string]bool{"is_public": isPublic},
	}, nil)
}

func (s *tableService) readDocuments(ctx context.Context, sess *model.Session, endpoint string) ([]model.Document, error) {
	var page documentPage
	if err := s.backend.ResolveReadable(ctx, sess, endpoint, &page); err != nil {
		return nil, err
	}
	return page.normalize(), nil
}
