package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
)

func TestLoginUnifiesClaimedProvider(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"accessToken":"at-1","refreshToken":"rt-1","expiresIn":3600,
			"user":{"id":"user-1","email":"owner@autofix.ph","fullName":"Juan Dela Cruz"},
			"business":{"source":"claimed_provider","providerId":"prov-7","name":"AutoFix Garage","category":"repair","status":"approved","city":"Cebu"}
		}}`))
	}))
	defer ts.Close()

	svc := NewAuthService(backend.NewClient(ts.URL, "anon"), noopLogger{})

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "owner@autofix.ph", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken != "at-1" || res.User.Id != "user-1" {
		t.Fatalf("response = %+v", res)
	}
	if res.Business == nil {
		t.Fatal("unified business missing")
	}
	if res.Business.Source != "claimed_provider" || res.Business.Id != "prov-7" {
		t.Fatalf("unified business = %+v", res.Business)
	}
	if res.Business.DisplayName != "AutoFix Garage" {
		t.Fatalf("displayName = %q", res.Business.DisplayName)
	}
}

func TestLogoutRevokesBackendSession(t *testing.T) {
	var hits int64
	mux := http.NewServeMux()
	mux.HandleFunc("/functions/v1/business-logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	svc := NewAuthService(backend.NewClient(ts.URL, "anon"), noopLogger{})

	if err := svc.Logout(context.Background(), "user-token"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("logout calls = %d, want 1", got)
	}
}

func TestLogoutPropagatesFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"session not found","code":401}}`))
	}))
	defer ts.Close()

	svc := NewAuthService(backend.NewClient(ts.URL, "anon"), noopLogger{})
	if err := svc.Logout(context.Background(), "stale-token"); err == nil {
		t.Fatal("expected backend failure to propagate")
	}
}
