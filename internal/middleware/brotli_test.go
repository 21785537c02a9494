package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func brotliRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli())
	big := strings.Repeat("안녕하세요 ", 400)
	r.GET("/api/v1/vocabulary", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/api/v1/listening/x/audio", func(c *gin.Context) { c.Data(http.StatusOK, "audio/wav", []byte(big)) })
	r.GET("/media", func(c *gin.Context) { c.Data(http.StatusOK, "audio/mpeg", []byte(big)) })
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotli_CompressesText(t *testing.T) {
	w := get(brotliRouter(), "/api/v1/vocabulary")
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))

	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("안녕하세요 ", 400), string(plain))
}

func TestBrotli_LeavesAudioAlone(t *testing.T) {
	r := brotliRouter()
	for _, path := range []string{"/api/v1/listening/x/audio", "/media"} {
		w := get(r, path)
		require.Empty(t, w.Header().Get("Content-Encoding"), path)
		require.Equal(t, strings.Repeat("안녕하세요 ", 400), w.Body.String(), path)
	}
}
