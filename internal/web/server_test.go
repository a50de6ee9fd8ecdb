package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/config"
	"docgen/internal/core"
	"docgen/internal/docx"
	"docgen/internal/schema"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 5 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
			MaxRows:     1000,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range []struct{ name, data string }{
		{"[Content_Types].xml", "<Types/>"},
		{"word/document.xml", "<w:t>{{importer_name}}: {{assessable_value}}</w:t>"},
	} {
		w, err := zw.Create(part.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(part.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	tpl, err := docx.New(buf.Bytes())
	require.NoError(t, err)

	svc, err := core.NewService(tpl, schema.BillOfEntry, core.Limits{
		MaxFileSize: cfg.Upload.MaxFileSize,
		MaxRows:     cfg.Upload.MaxRows,
	}, 2)
	require.NoError(t, err)

	return NewServer(svc, cfg)
}

// uploadRequest builds a multipart POST with an optional mode field and a
// CSV file part.
func uploadRequest(t *testing.T, path, mode, filename, body string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if mode != "" {
		require.NoError(t, mw.WriteField("mode", mode))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, body io.Reader) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

const sampleCSV = "Importer Name,Eight Digit HS Code,Assessable Value Amount\n" +
	"Acme,1001,100.00\n" +
	"Globex,3003,75.25\n" +
	"Acme,1002,250.50\n"

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "individual", "boe.csv", sampleCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="individual_documents.zip"`, rec.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	assert.Equal(t, "Document_1_Acme.docx", zr.File[0].Name)
	assert.Equal(t, "Document_2_Globex.docx", zr.File[1].Name)
	assert.Equal(t, "Document_3_Acme.docx", zr.File[2].Name)
}

func TestGenerate_LegacyRoutes(t *testing.T) {
	tests := []struct {
		path        string
		wantArchive string
		wantEntries int
	}{
		{"/api/generate-docs", `attachment; filename="individual_documents.zip"`, 3},
		{"/api/generate-aggregated-docs", `attachment; filename="aggregated_documents.zip"`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			srv := newTestServer(t)

			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, uploadRequest(t, tt.path, "", "boe.csv", sampleCSV))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantArchive, rec.Header().Get("Content-Disposition"))

			zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
			require.NoError(t, err)
			assert.Len(t, zr.File, tt.wantEntries)
		})
	}
}

func TestGenerate_BadMode(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "weekly", "boe.csv", sampleCSV))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL003", decodeError(t, rec.Body).Code)
}

func TestGenerate_NoFile(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "individual", "", ""))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE003", decodeError(t, rec.Body).Code)
}

func TestGenerate_OversizedBodyRejectedBeforeModeParse(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 1024
	srv := newTestServerWithConfig(t, cfg)

	// An invalid mode plus a body past the cap: the size cap must trip
	// first, before any form field is read.
	big := strings.Repeat("x", 64*1024)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "weekly", "boe.csv", big))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE002", decodeError(t, rec.Body).Code)
}

func TestGenerate_LegacyXLSRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "individual", "boe.xls", "legacy workbook bytes"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec.Body).Code)
}

func TestGenerate_MissingRequiredColumn(t *testing.T) {
	srv := newTestServer(t)
	csv := "Eight Digit HS Code,Assessable Value Amount\n1001,100.00\n"

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "individual", "boe.csv", csv))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "VAL001", resp.Code)
	assert.Contains(t, resp.Message, "importer_name")
}

func TestGenerate_UnsupportedFileType(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "individual", "notes.txt", "hello"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec.Body).Code)
}

func TestGenerate_HeaderOnly(t *testing.T) {
	srv := newTestServer(t)
	csv := "Importer Name,Assessable Value Amount\n"

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/generate", "individual", "boe.csv", csv))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "GEN001", decodeError(t, rec.Body).Code)
}

func TestPreview(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "/api/upload", "", "boe.csv", sampleCSV))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Records []map[string]string `json:"records"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "Acme", resp.Records[0]["importer_name"])
	assert.Equal(t, "1001", resp.Records[0]["hs_code"])
	assert.Equal(t, "100.00", resp.Records[0]["assessable_value"])
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	// Middleware is wired at construction, so rebuild with the limit on.
	srv = NewServer(srv.service, srv.cfg)

	var lastCode int
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		srv.Router().ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)

	// A different client is unaffected.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.10:1234"
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerate_WrongMethod(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
