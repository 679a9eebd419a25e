package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"hydrostock/internal/core/apperror"
	appctx "hydrostock/internal/core/context"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.Use(handlers...)
	return r
}

func TestRecoveryRendersInternalError(t *testing.T) {
	r := newEngine()
	r.GET("/boom", func(c *gin.Context) { panic("nil map") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, w.Body.String(), "nil map")
}

func TestTraceEchoesRequestID(t *testing.T) {
	r := newEngine()
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetRequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-42", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

func TestErrorHandlerHidesPlainErrors(t *testing.T) {
	r := newEngine()
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: password authentication failed"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("signature is invalid")
	}
	return &appctx.UserContext{UserID: "operator"}, nil
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name      string
		validator JWTValidator
		header    string
		value     string
		status    int
		actor     string
	}{
		{"header actor", nil, HeaderRequestedBy, "storekeeper", http.StatusOK, "storekeeper"},
		{"blank header", nil, HeaderRequestedBy, "   ", http.StatusUnauthorized, ""},
		{"no header", nil, "", "", http.StatusUnauthorized, ""},
		{"bearer", stubValidator{}, "Authorization", "Bearer good", http.StatusOK, "operator"},
		{"bad token", stubValidator{}, "Authorization", "Bearer bad", http.StatusUnauthorized, ""},
		{"basic scheme", stubValidator{}, "Authorization", "Basic Zm9v", http.StatusUnauthorized, ""},
		{"header ignored with validator", stubValidator{}, HeaderRequestedBy, "storekeeper", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(Auth(tt.validator))
			r.GET("/me", func(c *gin.Context) {
				c.String(http.StatusOK, appctx.GetUserID(c.Request.Context()))
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.actor, w.Body.String())
			}
		})
	}
}
