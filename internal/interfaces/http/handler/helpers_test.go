package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testScope is the identity every test request is made as
type testScope struct {
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newTestScope() testScope {
	return testScope{tenantID: uuid.New(), userID: uuid.New()}
}

// engine wires the identity the auth middleware would set, plus the
// Idempotency-Key middleware, in front of the routes under test.
func (s testScope) engine() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "test-request")
		c.Set(logger.GinTenantIDKey, s.tenantID.String())
		c.Set(logger.GinUserIDKey, s.userID.String())
		c.Next()
	}, middleware.IdempotencyKey())
	return r
}

func doJSON(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeError returns the error block of an error response
func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp struct {
		Success bool          `json:"success"`
		Error   dto.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	return resp.Error
}

// decodeData unmarshals the data block of a success response into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
