package attr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	t.Run("explicit id wins", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "corr-1")
		assert.Equal(t, "corr-1", CorrelationID(ctx))
		assert.Equal(t, "corr-1", ExtractCorrelationID(ctx).Value.String())
	})

	t.Run("falls back to chi request id", func(t *testing.T) {
		var got string
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = CorrelationID(r.Context())
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, got)
	})

	t.Run("empty without either", func(t *testing.T) {
		assert.Empty(t, CorrelationID(context.Background()))
	})
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}
