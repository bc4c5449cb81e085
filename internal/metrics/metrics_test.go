package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"go-file-tree/internal/model"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "conflict", Outcome(model.NewNameConflict(model.KindFile, model.KindFile, "a", false)))
	require.Equal(t, "not_found", Outcome(model.ErrFolderNotFound))
	require.Equal(t, "not_found", Outcome(model.ErrFileNotFound))
	require.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveTreeOp("create_folder", nil)
	m.ObserveTreeOp("create_folder", nil)
	m.ObserveTreeOp("create_folder", model.ErrNameConflict)
	m.ObserveRequest(http.MethodGet, "/folders", http.StatusOK, 5*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.treeOps.WithLabelValues("create_folder", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.treeOps.WithLabelValues("create_folder", "conflict")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/folders", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "filetree_tree_operations_total")
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveTreeOp("x", nil)
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}
