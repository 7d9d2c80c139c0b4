package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/get-provider", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"id": "p1", "businessName": "Juan's Repair"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon")
	var out struct {
		Id           string `json:"id"`
		BusinessName string `json:"businessName"`
	}
	err := client.Call(context.Background(), "get-provider", map[string]string{"providerId": "p1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "p1", out.Id)
	assert.Equal(t, "Juan's Repair", out.BusinessName)
}

func TestCallExtractsErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]interface{}{"message": "provider already claimed", "code": 409},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon")
	err := client.Call(context.Background(), "claim-provider", nil, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "provider already claimed", apiErr.Message)
	assert.Equal(t, 409, apiErr.Code)
}

func TestCallFallsBackOnNonEnvelopeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon")
	err := client.Call(context.Background(), "business-profile", nil, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
	assert.Contains(t, apiErr.Message, "business-profile")
}

func TestCallWithAuthRequiresToken(t *testing.T) {
	client := NewClient("http://localhost:0", "anon")
	err := client.CallWithAuth(context.Background(), "get-user-claim-status", "", nil, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "not authenticated")
}

func TestCallWithAuthSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon")
	err := client.CallWithAuth(context.Background(), "get-user-claim-status", "user-token", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer user-token", gotAuth)
}
