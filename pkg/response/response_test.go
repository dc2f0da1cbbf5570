package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/davidblanco1407/pma-frequency-backend/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func recorder() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.Validation(40011, "bad phone"), http.StatusBadRequest},
		{"unauthorized", apperrors.Unauthorized(40101, "bad credentials"), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden(40300, "no"), http.StatusForbidden},
		{"not found", apperrors.NotFound(40401, "missing"), http.StatusNotFound},
		{"conflict", apperrors.Conflict(40901, "taken"), http.StatusConflict},
		{"unavailable", apperrors.Unavailable(50301, "mail down"), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("ctx: %w", apperrors.NotFound(40402, "missing")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := recorder()
			require.True(t, FromError(c, tt.err))
			assert.Equal(t, tt.status, w.Code)

			appErr, _ := apperrors.As(tt.err)
			assert.Equal(t, appErr.Code, decode(t, w).Code)
		})
	}
}

func TestFromError_Unclassified(t *testing.T) {
	for _, err := range []error{
		errors.New("boom"),
		apperrors.New(apperrors.KindInternal, 50010, "export failed"),
	} {
		c, w := recorder()
		assert.False(t, FromError(c, err))
		assert.Zero(t, w.Body.Len())
	}
}

func TestFromError_Fields(t *testing.T) {
	c, w := recorder()
	FromError(c, apperrors.Conflict(40901, "taken").WithField("email", "already registered"))
	assert.Equal(t, map[string]string{"email": "already registered"}, decode(t, w).Fields)
}

func TestOKPage(t *testing.T) {
	c, w := recorder()
	OKPage(c, []int{1, 2}, 41, 3, 20)

	var body struct {
		Data PageData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, Pagination{Page: 3, PageSize: 20, Total: 41, TotalPages: 3}, body.Data.Pagination)
}
