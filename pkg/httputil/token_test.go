package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{name: "bearer header", target: "/", header: "Bearer abc", want: "abc"},
		{name: "raw header", target: "/", header: "abc", want: "abc"},
		{name: "query parameter", target: "/?token=xyz", want: "xyz"},
		{name: "header wins over query", target: "/?token=xyz", header: "Bearer abc", want: "abc"},
		{name: "empty bearer falls back to query", target: "/?token=xyz", header: "Bearer ", want: "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := GetTokenFromRequest(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := GetTokenFromRequest(httptest.NewRequest("GET", "/", nil))
		assert.ErrorIs(t, err, ErrNoToken)
	})
}
