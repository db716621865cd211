package uploadserver_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

func TestMetrics_Exposition(t *testing.T) {
	t.Parallel()
	s, _ := newServer(t, func(c *upload.Config) {
		c.ExtWhitelist = []string{"txt"}
		c.MaxSize = 100
	})

	rec := serve(s, multipartRequest(t,
		part{"a", "ok.txt", "12345"},
		part{"b", "big.bin", string(make([]byte, 200))},
	))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `uploadkit_files_validated_total{result="valid"} 1`)
	assert.Contains(t, body, `uploadkit_files_validated_total{result="invalid"} 1`)
	assert.Contains(t, body, `uploadkit_files_saved_total{result="saved"} 1`)
	assert.Contains(t, body, `uploadkit_file_errors_total{code="101"} 1`)
	assert.Contains(t, body, `uploadkit_file_errors_total{code="103"} 1`)
	assert.Contains(t, body, `uploadkit_saved_bytes_total 5`)
	assert.Contains(t, body, `uploadkit_http_requests_total{method="POST",route="/uploads",status="422"} 1`)
}

func TestMetrics_SaveFailure(t *testing.T) {
	t.Parallel()
	s, dir := newServer(t, func(c *upload.Config) {
		c.AutoRename = false
	})

	rec := serve(s, multipartRequest(t, part{"a", "dup.txt", "one"}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.FileExists(t, dir+"/dup.txt")

	rec = serve(s, multipartRequest(t, part{"a", "dup.txt", "two"}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `uploadkit_files_validated_total{result="valid"} 2`)
	assert.Contains(t, body, `uploadkit_files_saved_total{result="failed"} 1`)
	assert.Contains(t, body, `uploadkit_file_errors_total{code="110"} 1`)
}
