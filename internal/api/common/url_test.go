package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndValidateURLParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantValue  string
		wantErrMsg string
	}{
		{name: "plain handle", path: "/c/rings", wantValue: "rings"},
		{name: "dashes and dots", path: "/c/summer-sale.2025", wantValue: "summer-sale.2025"},
		{name: "encoded colon", path: "/c/gift%3Aideas", wantValue: "gift:ideas"},
		{name: "encoded space", path: "/c/gift%20ideas", wantErrMsg: "collection cannot contain whitespace"},
		{name: "encoded tab", path: "/c/gift%09ideas", wantErrMsg: "collection cannot contain whitespace"},
		{name: "blank", path: "/c/%20", wantErrMsg: "collection cannot be empty"},
		{name: "encoded slash", path: "/c/gift%2Fideas", wantErrMsg: "collection cannot contain a slash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got    string
				gotErr error
			)
			r := chi.NewRouter()
			r.Get("/c/{collection}", func(_ http.ResponseWriter, req *http.Request) {
				got, gotErr = GetAndValidateURLParam(req, "collection")
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			r.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantErrMsg != "" {
				require.Error(t, gotErr)
				assert.Equal(t, tt.wantErrMsg, gotErr.Error())
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantValue, got)
		})
	}
}

func TestGetAndValidateURLParam_Missing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/c/", nil)
	_, err := GetAndValidateURLParam(req, "collection")
	require.EqualError(t, err, "collection cannot be empty")
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteErrorResponse(rr, "boom", http.StatusBadGateway)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "boom", body.Error)
}
