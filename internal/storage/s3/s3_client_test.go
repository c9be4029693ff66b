package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecrafter/internal/config"
	"pagecrafter/internal/port"
	s3store "pagecrafter/internal/storage/s3"
)

type recordedRequest struct {
	Method      string
	Path        string
	Body        string
	ContentType string
	Disposition string
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Body:        string(body),
			ContentType: r.Header.Get("Content-Type"),
			Disposition: r.Header.Get("Content-Disposition"),
		})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"abc123"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func newClient(t *testing.T, endpoint string) port.ObjectStorage {
	t.Helper()
	client, err := s3store.NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Bucket:    "exports",
		Endpoint:  endpoint,
		AccessKey: "test-access",
		SecretKey: "test-secret",
	})
	require.NoError(t, err)
	return client
}

func TestS3Client_Upload(t *testing.T) {
	srv, requests := newFakeS3(t)
	client := newClient(t, srv.URL)

	out, err := client.Upload(context.Background(), port.PutObjectInput{
		Bucket:             "exports",
		Key:                "exports/u/p/site.html",
		Body:               strings.NewReader("<h1>Hi</h1>"),
		ContentType:        "text/html; charset=utf-8",
		ContentDisposition: `attachment; filename="site.html"`,
	})

	require.NoError(t, err)
	assert.Equal(t, `"abc123"`, out.ETag)
	assert.Contains(t, out.Location, "/exports/exports/u/p/site.html")

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/exports/exports/u/p/site.html", reqs[0].Path)
	assert.Contains(t, reqs[0].Body, "<h1>Hi</h1>")
	assert.Equal(t, "text/html; charset=utf-8", reqs[0].ContentType)
	assert.Equal(t, `attachment; filename="site.html"`, reqs[0].Disposition)
}

func TestS3Client_Delete(t *testing.T) {
	srv, requests := newFakeS3(t)
	client := newClient(t, srv.URL)

	require.NoError(t, client.Delete(context.Background(), "exports", "exports/u/p/site.html"))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/exports/exports/u/p/site.html", reqs[0].Path)
}

func TestS3Client_GetPresignedURL(t *testing.T) {
	srv, requests := newFakeS3(t)
	client := newClient(t, srv.URL)

	raw, err := client.GetPresignedURL(context.Background(), "exports", "exports/u/p/site.html", 600)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, srv.URL))
	assert.Equal(t, "/exports/exports/u/p/site.html", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Empty(t, requests(), "presigning must not contact the server")
}
