package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharetome/internal/apiclient"
	"sharetome/internal/model"
)

func testSession() *model.Session {
	return &model.Session{Email: "dev@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func newTableServiceWith(t *testing.T, h http.HandlerFunc) TableService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := apiclient.New(apiclient.Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: zerolog.Nop()})
	return NewTableService(client)
}

func TestTableService_ListUserTables(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes visibility field", func(t *testing.T) {
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/tables", r.URL.Path)
			w.Write([]byte(`[{"table_id":"a","table_name":"A","public":true},{"table_id":"b","table_name":"B","is_public":false}]`))
		})

		tables, err := svc.ListUserTables(ctx, testSession())
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.True(t, tables[0].IsPublic)
		assert.False(t, tables[1].IsPublic)
	})

	t.Run("null becomes empty list", func(t *testing.T) {
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		})

		tables, err := svc.ListUserTables(ctx, testSession())
		require.NoError(t, err)
		assert.NotNil(t, tables)
		assert.Empty(t, tables)
	})

	t.Run("requires session", func(t *testing.T) {
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Fail(t, "backend must not be called")
		})
		_, err := svc.ListUserTables(ctx, nil)
		assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
	})
}

func TestTableService_GetTable(t *testing.T) {
	ctx := context.Background()

	svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/table", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("table_id"))
		if r.Header.Get("Authorization") != "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"table_id":"abc123","table_name":"Shared","public":true}`))
	})

	tbl, err := svc.GetTable(ctx, testSession(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, &model.Table{TableID: "abc123", TableName: "Shared", IsPublic: true}, tbl)

	_, err = svc.GetTable(ctx, testSession(), "")
	assert.ErrorIs(t, err, ErrTableIDRequired)
}

func TestTableService_CreateTable(t *testing.T) {
	ctx := context.Background()

	var got map[string]any
	svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create_table", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"table_id":"t-1"}`))
	})

	res, err := svc.CreateTable(ctx, testSession(), model.CreateTableInput{
		TableName:         "  Reports ",
		SkipTableCreation: true,
		Documents:         []model.DocumentRef{{FileName: "a.pdf", FilePath: "uploads/a.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", res.TableID)
	assert.Equal(t, "Reports", got["table_name"])
	assert.Equal(t, true, got["skip_table_creation"])
	assert.Equal(t, false, got["is_public"])
	docs := got["documents"].([]any)
	require.Len(t, docs, 1)
	assert.Equal(t, "uploads/a.pdf", docs[0].(map[string]any)["file_path"])

	_, err = svc.CreateTable(ctx, testSession(), model.CreateTableInput{TableName: "   "})
	assert.ErrorIs(t, err, ErrTableNameRequired)
}

func TestTableService_Documents(t *testing.T) {
	ctx := context.Background()

	t.Run("blank query lists all and never searches", func(t *testing.T) {
		searched := false
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/es/search":
				searched = true
			case "/es/all":
				w.Write([]byte(`[{"id":"d1","source":{"properties":{"text_representation":"hello","properties":{"file_name":"a.pdf","page_number":2}}}}]`))
				return
			}
			w.Write([]byte(`[]`))
		})

		docs, err := svc.SearchDocuments(ctx, testSession(), "   ", "t1")
		require.NoError(t, err)
		assert.False(t, searched)
		require.Len(t, docs, 1)
		assert.Equal(t, "d1", docs[0].ID)
		assert.Equal(t, "a.pdf", docs[0].FileName())
		assert.Equal(t, 2, docs[0].PageNumber())
		assert.Equal(t, "hello", docs[0].Text())
	})

	t.Run("search normalizes raw hits", func(t *testing.T) {
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/es/search", r.URL.Path)
			assert.Equal(t, "revenue growth", r.URL.Query().Get("q"))
			assert.Equal(t, "t1", r.URL.Query().Get("table_id"))
			w.Write([]byte(`{"hits":{"hits":[{"_id":"h1","_source":{"text_representation":"top","properties":{"properties":{"file_name":"b.pdf","page_number":"7"}}}}]}}`))
		})

		docs, err := svc.SearchDocuments(ctx, testSession(), " revenue growth ", "t1")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "h1", docs[0].ID)
		assert.Equal(t, "top", docs[0].Text())
		assert.Equal(t, 7, docs[0].PageNumber())
	})

	t.Run("null listing is empty", func(t *testing.T) {
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		})
		docs, err := svc.ListDocuments(ctx, nil, "t1")
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("table id required", func(t *testing.T) {
		svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := svc.SearchDocuments(ctx, testSession(), "x", "")
		assert.ErrorIs(t, err, ErrTableIDRequired)
	})
}

func TestTableService_UpdateVisibility(t *testing.T) {
	ctx := context.Background()

	svc := newTableServiceWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/table/t%201/visibility", r.URL.EscapedPath())
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body["is_public"])
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, svc.UpdateVisibility(ctx, testSession(), "t 1", true))
	assert.ErrorIs(t, svc.UpdateVisibility(ctx, testSession(), "", true), ErrTableIDRequired)
	assert.ErrorIs(t, svc.UpdateVisibility(ctx, nil, "t1", true), apiclient.ErrUnauthenticated)
}
