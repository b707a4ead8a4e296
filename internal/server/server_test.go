package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"zipcaster/internal/codec"
	"zipcaster/internal/config"
	"zipcaster/internal/database"
	"zipcaster/internal/db"
	"zipcaster/internal/domain"
	"zipcaster/internal/export"
	"zipcaster/internal/repository"
	"zipcaster/internal/service"
	"zipcaster/internal/source"
	"zipcaster/internal/transform"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testdataDir = "../service/testdata"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "server.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	queries := db.New(sqlDB)

	table, err := codec.DefaultAbilityTable()
	require.NoError(t, err)
	engine := transform.NewEngine(transform.NewAssembler(codec.NewAbilityResolver(table)))

	rawDir := t.TempDir()
	modeDir := filepath.Join(rawDir, string(domain.ModeTurfWar))
	require.NoError(t, os.MkdirAll(modeDir, 0o755))
	for _, name := range []string{source.OverviewFile, source.DetailedFile} {
		data, err := os.ReadFile(filepath.Join(testdataDir, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(modeDir, name), data, 0o644))
	}

	battles := repository.NewBattleRepository(sqlDB, queries, zerolog.Nop())
	runs := repository.NewImportRunRepository(sqlDB, queries, zerolog.Nop())
	cfg := &config.Config{Modes: []domain.Mode{domain.ModeTurfWar}, Limit: -1}

	importSvc := service.NewImportService(
		source.NewDir(rawDir, zerolog.Nop()), engine, battles, runs,
		[]export.Exporter{export.NewSQLiteExporter(battles, zerolog.Nop())},
		cfg, zerolog.Nop(),
	)
	battleSvc := service.NewBattleService(engine, battles, runs, zerolog.Nop())

	return NewBattleServer(battleSvc, importSvc, zerolog.Nop()).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTransform(t *testing.T) {
	h := newTestServer(t)

	overview, err := os.ReadFile(filepath.Join(testdataDir, source.OverviewFile))
	require.NoError(t, err)
	detailed, err := os.ReadFile(filepath.Join(testdataDir, source.DetailedFile))
	require.NoError(t, err)

	body, err := json.Marshal(map[string]json.RawMessage{"overview": overview, "details": detailed})
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/v1/transform", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	out := gjson.ParseBytes(rec.Body.Bytes())
	assert.Len(t, out.Get("records").Array(), 2)
	assert.Equal(t, "regular", out.Get("records.0.mode").String())
	assert.Empty(t, out.Get("failures").Array())

	// Nothing is stored by a transform.
	rec = do(t, h, http.MethodGet, "/v1/battles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gjson.GetBytes(rec.Body.Bytes(), "battles").Array())
}

func TestTransform_PartialFailure(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/transform", []byte(`{"details":[{"id":"bm90LWEtYmF0dGxl"}]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	out := gjson.ParseBytes(rec.Body.Bytes())
	assert.Empty(t, out.Get("records").Array())
	assert.Len(t, out.Get("failures").Array(), 1)
}

func TestTransform_BadBody(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/transform", []byte(`{"details":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, gjson.GetBytes(rec.Body.Bytes(), "request_id").String())
}

func TestImportAndQuery(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/import", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2), gjson.GetBytes(rec.Body.Bytes(), "runs.0.imported").Int())

	rec = do(t, h, http.MethodGet, "/v1/battles?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	battles := gjson.GetBytes(rec.Body.Bytes(), "battles").Array()
	require.Len(t, battles, 1)
	id := battles[0].Get("id").String()
	assert.Equal(t, "u-abc:RECENT:20230304T060000_b2", id)

	rec = do(t, h, http.MethodGet, "/v1/battles/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, gjson.GetBytes(rec.Body.Bytes(), "id").String())

	rec = do(t, h, http.MethodGet, "/v1/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.GetBytes(rec.Body.Bytes(), "runs").Array(), 1)
}

func TestGetBattle_NotFound(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/v1/battles/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBattles_BadLimit(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/v1/battles?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
