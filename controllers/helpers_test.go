package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-api/services"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// useMockCatalogs installs the built-in catalogs for the duration of the test
func useMockCatalogs(t *testing.T) *services.MockCatalogService {
	t.Helper()
	mock, err := services.NewMockCatalogService()
	require.NoError(t, err)
	mock.SetAsMockForTesting()
	t.Cleanup(func() { services.SetCatalogService(nil) })
	return mock
}

// performJSON sends body as JSON and decodes the envelope
func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "response should be valid JSON: %s", w.Body.String())
	}
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errBody, _ := response["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}
