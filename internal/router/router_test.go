package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-tree/internal/config"
	"go-file-tree/internal/event"
	"go-file-tree/internal/handler"
	"go-file-tree/internal/metrics"
	"go-file-tree/internal/router"
	"go-file-tree/internal/service"
	"go-file-tree/internal/store"
)

type folderJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	CreatedAt string  `json:"createdAt"`
}

type fileJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
	Size     int64  `json:"size"`
	Order    int    `json:"order"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	m := metrics.New()
	treeService := service.NewTreeService(store.NewMemory(), event.NewBus(), m)
	cfg := &config.Config{RequestTimeout: 5 * time.Second}

	return router.New(cfg, router.Handlers{
		Folder: handler.NewFolderHandler(treeService),
		File:   handler.NewFileHandler(treeService),
		Health: handler.NewHealthHandler(nil),
	}, m, nil)
}

func do(t *testing.T, h http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, message), rec.Body.String())
}

func createFolder(t *testing.T, h http.Handler, name string, parentID string) folderJSON {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q}`, name)
	if parentID != "" {
		body = fmt.Sprintf(`{"name":%q,"parentId":%q}`, name, parentID)
	}
	rec := do(t, h, http.MethodPost, "/folders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[folderJSON](t, rec)
}

func createFile(t *testing.T, h http.Handler, name string, parentID string, size int) fileJSON {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/files", fmt.Sprintf(`{"name":%q,"parentId":%q,"size":%d}`, name, parentID, size))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[fileJSON](t, rec)
}

func fileNames(files []fileJSON) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestFolders(t *testing.T) {
	h := newTestRouter(t)

	docs := createFolder(t, h, "Docs", "")
	assert.Equal(t, "Docs", docs.Name)
	assert.Nil(t, docs.ParentID)
	assert.NotEmpty(t, docs.CreatedAt)

	requireError(t, do(t, h, http.MethodPost, "/folders", `{"name":"docs"}`),
		http.StatusConflict, `Folder "docs" already exists in this directory`)
	requireError(t, do(t, h, http.MethodPost, "/folders", `{"name":"   "}`),
		http.StatusBadRequest, "name is required")
	requireError(t, do(t, h, http.MethodPost, "/folders", `{"name":`),
		http.StatusBadRequest, "invalid JSON body")

	nested := createFolder(t, h, "docs", docs.ID)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, docs.ID, *nested.ParentID)

	rootFolders := decode[[]folderJSON](t, do(t, h, http.MethodGet, "/folders", ""))
	require.Len(t, rootFolders, 1)
	assert.Equal(t, docs.ID, rootFolders[0].ID)

	rootFolders = decode[[]folderJSON](t, do(t, h, http.MethodGet, "/folders?parentId=", ""))
	require.Len(t, rootFolders, 1)

	children := decode[[]folderJSON](t, do(t, h, http.MethodGet, "/folders?parentId="+docs.ID, ""))
	require.Len(t, children, 1)
	assert.Equal(t, nested.ID, children[0].ID)

	all := decode[[]folderJSON](t, do(t, h, http.MethodGet, "/folders?all=true", ""))
	assert.Len(t, all, 2)

	t.Run("rename", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/folders/"+docs.ID, `{"name":"Documents"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Documents", decode[folderJSON](t, rec).Name)

		rec = do(t, h, http.MethodPatch, "/folders/"+docs.ID, `{"name":"DOCUMENTS"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		requireError(t, do(t, h, http.MethodPatch, "/folders/missing", `{"name":"x"}`),
			http.StatusNotFound, "Folder not found")
		requireError(t, do(t, h, http.MethodPatch, "/folders/"+docs.ID, `{"name":""}`),
			http.StatusBadRequest, "name is required")
	})

	t.Run("delete cascades", func(t *testing.T) {
		createFile(t, h, "inner.txt", nested.ID, 3)
		createFile(t, h, "top.txt", docs.ID, 3)
		outside := createFile(t, h, "outside.txt", "__root__", 3)

		rec := do(t, h, http.MethodDelete, "/folders/"+docs.ID, "")
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		assert.Empty(t, decode[[]folderJSON](t, do(t, h, http.MethodGet, "/folders?all=true", "")))

		files := decode[[]fileJSON](t, do(t, h, http.MethodGet, "/files?all=true", ""))
		require.Len(t, files, 1)
		assert.Equal(t, outside.ID, files[0].ID)

		rec = do(t, h, http.MethodDelete, "/folders/"+docs.ID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestFiles_CreateValidation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "blank name", body: `{"name":" ","parentId":"__root__","size":1}`, message: "name is required"},
		{name: "missing parent", body: `{"name":"a","size":1}`, message: "parentId is required"},
		{name: "empty parent", body: `{"name":"a","parentId":"","size":1}`, message: "parentId is required"},
		{name: "missing size", body: `{"name":"a","parentId":"__root__"}`, message: "size must be a non-negative number"},
		{name: "negative size", body: `{"name":"a","parentId":"__root__","size":-1}`, message: "size must be a non-negative number"},
		{name: "non-numeric size", body: `{"name":"a","parentId":"__root__","size":"big"}`, message: "size must be a non-negative number"},
		{name: "size beyond int64", body: `{"name":"a","parentId":"__root__","size":9223372036854775808}`, message: "size must be a non-negative number"},
		{name: "control character in name", body: `{"name":"a\u0007b","parentId":"__root__","size":1}`, message: "name must not contain control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireError(t, do(t, h, http.MethodPost, "/files", tt.body), http.StatusBadRequest, tt.message)
		})
	}

	rec := do(t, h, http.MethodPost, "/files", `{"name":"a.txt","parentId":"__root__","size":"42"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[fileJSON](t, rec)
	assert.Equal(t, int64(42), created.Size)
	assert.Equal(t, "__root__", created.ParentID)
	assert.Equal(t, 0, created.Order)
}

func TestNamesAreStoredAsGiven(t *testing.T) {
	h := newTestRouter(t)

	family := "\U0001F468\u200d\U0001F469\u200d\U0001F467 photos"
	folder := createFolder(t, h, "  "+family+" ", "")
	assert.Equal(t, family, folder.Name)

	long := strings.Repeat("n", 300)
	file := createFile(t, h, long, "__root__", 1)
	assert.Equal(t, long, file.Name)

	file = createFile(t, h, "max.bin", "__root__", 9223372036854775807)
	assert.Equal(t, int64(9223372036854775807), file.Size)
}

func TestFiles_UpdateIgnoresNonStringFields(t *testing.T) {
	h := newTestRouter(t)

	dest := createFolder(t, h, "dest", "")
	file := createFile(t, h, "keep.txt", "__root__", 1)

	rec := do(t, h, http.MethodPatch, "/files/"+file.ID, fmt.Sprintf(`{"name":5,"parentId":%q}`, dest.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	moved := decode[fileJSON](t, rec)
	assert.Equal(t, "keep.txt", moved.Name)
	assert.Equal(t, dest.ID, moved.ParentID)

	requireError(t, do(t, h, http.MethodPatch, "/files/"+file.ID, `{"name":{"x":1},"parentId":7}`),
		http.StatusBadRequest, "name or parentId required")
}

func TestFiles_NameConflictWithFolder(t *testing.T) {
	h := newTestRouter(t)

	createFolder(t, h, "Docs", "")

	requireError(t, do(t, h, http.MethodPost, "/files", `{"name":"Docs","parentId":"__root__","size":1}`),
		http.StatusConflict, `A folder named "Docs" already exists in this directory`)

	createFile(t, h, "Notes", "__root__", 1)
	requireError(t, do(t, h, http.MethodPost, "/folders", `{"name":"notes"}`),
		http.StatusConflict, `A file named "notes" already exists in this directory`)
}

func TestFiles_Reorder(t *testing.T) {
	h := newTestRouter(t)

	a := createFile(t, h, "A", "__root__", 1)
	b := createFile(t, h, "B", "__root__", 1)
	c := createFile(t, h, "C", "__root__", 1)
	assert.Equal(t, []int{0, 1, 2}, []int{a.Order, b.Order, c.Order})

	body := fmt.Sprintf(`{"parentId":null,"orderedIds":[%q,%q,%q,"unknown"]}`, c.ID, a.ID, b.ID)
	rec := do(t, h, http.MethodPatch, "/files/reorder", body)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	files := decode[[]fileJSON](t, do(t, h, http.MethodGet, "/files", ""))
	assert.Equal(t, []string{"C", "A", "B"}, fileNames(files))

	requireError(t, do(t, h, http.MethodPatch, "/files/reorder", `{"parentId":"","orderedIds":"abc"}`),
		http.StatusBadRequest, "orderedIds must be an array")
	requireError(t, do(t, h, http.MethodPatch, "/files/reorder", `{"parentId":""}`),
		http.StatusBadRequest, "orderedIds must be an array")
}

func TestFiles_Update(t *testing.T) {
	h := newTestRouter(t)

	folder2 := createFolder(t, h, "folder2", "")
	for i := 0; i < 5; i++ {
		created := createFile(t, h, fmt.Sprintf("f%d.txt", i), folder2.ID, 1)
		require.Equal(t, i, created.Order)
	}
	report := createFile(t, h, "report.pdf", "__root__", 10)

	t.Run("move appends to destination", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/files/"+report.ID, fmt.Sprintf(`{"parentId":%q}`, folder2.ID))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		moved := decode[fileJSON](t, rec)
		assert.Equal(t, folder2.ID, moved.ParentID)
		assert.Equal(t, 5, moved.Order)

		assert.Empty(t, decode[[]fileJSON](t, do(t, h, http.MethodGet, "/files?parentId=__root__", "")))
	})

	t.Run("move conflict uses target wording", func(t *testing.T) {
		other := createFile(t, h, "F0.TXT", "__root__", 1)
		requireError(t, do(t, h, http.MethodPatch, "/files/"+other.ID, fmt.Sprintf(`{"parentId":%q}`, folder2.ID)),
			http.StatusConflict, `File "F0.TXT" already exists in target folder`)

		rec := do(t, h, http.MethodDelete, "/files/"+other.ID, "")
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("rename", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/files/"+report.ID, `{"name":"final.pdf"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "final.pdf", decode[fileJSON](t, rec).Name)

		requireError(t, do(t, h, http.MethodPatch, "/files/"+report.ID, `{"name":"f1.txt"}`),
			http.StatusConflict, `File "f1.txt" already exists in this directory`)
	})

	t.Run("move back to root with empty parent", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/files/"+report.ID, `{"parentId":""}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		moved := decode[fileJSON](t, rec)
		assert.Equal(t, "__root__", moved.ParentID)
		assert.Equal(t, 0, moved.Order)
	})

	t.Run("validation and not found", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"name":"  "}`, `{"parentId":null}`} {
			requireError(t, do(t, h, http.MethodPatch, "/files/"+report.ID, body),
				http.StatusBadRequest, "name or parentId required")
		}

		requireError(t, do(t, h, http.MethodPatch, "/files/missing", `{"name":"x"}`),
			http.StatusNotFound, "File not found")
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/files/"+report.ID, "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(t, h, http.MethodDelete, "/files/"+report.ID, "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		all := decode[[]fileJSON](t, do(t, h, http.MethodGet, "/files?all=true", ""))
		assert.Len(t, all, 5)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	do(t, h, http.MethodGet, "/folders", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "filetree_http_requests_total"))
}
