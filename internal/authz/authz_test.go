package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/transcriptomics-backend/internal/config"
)

func request(t *testing.T, headers map[string]string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/experiment", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestAllowAll(t *testing.T) {
	a, err := New(&config.Config{AuthzMode: "allow-all"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Authorize(request(t, nil)); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
}

func TestUnknownMode(t *testing.T) {
	if _, err := New(&config.Config{AuthzMode: "oidc"}); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	a, err := New(&config.Config{AuthzMode: "api-key", APIKeyHash: string(hash)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := a.Authorize(request(t, map[string]string{"Authorization": "Bearer s3cret"})); err != nil {
		t.Fatalf("bearer key rejected: %v", err)
	}
	if err := a.Authorize(request(t, map[string]string{"X-API-Key": "s3cret"})); err != nil {
		t.Fatalf("header key rejected: %v", err)
	}
	if err := a.Authorize(request(t, map[string]string{"X-API-Key": "wrong"})); err == nil {
		t.Fatal("wrong key accepted")
	}
	if err := a.Authorize(request(t, nil)); err == nil {
		t.Fatal("missing key accepted")
	}
}

func TestAPIKeyRequiresHash(t *testing.T) {
	if _, err := New(&config.Config{AuthzMode: "api-key"}); err == nil {
		t.Fatal("expected an error without a configured hash")
	}
}

func TestJWT(t *testing.T) {
	secret := "signing-secret"
	a, err := New(&config.Config{AuthzMode: "jwt", JWTSecret: secret})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := a.Authorize(request(t, map[string]string{"Authorization": "Bearer " + signed})); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}

	other, err := token.SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := a.Authorize(request(t, map[string]string{"Authorization": "Bearer " + other})); err == nil {
		t.Fatal("token with the wrong secret accepted")
	}
	if err := a.Authorize(request(t, nil)); err == nil {
		t.Fatal("missing token accepted")
	}
}

func TestRemotePolicy(t *testing.T) {
	allow := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("policy called with %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		if allow {
			w.Write([]byte(`{"result": true}`))
		} else {
			w.Write([]byte(`{"result": false}`))
		}
	}))
	defer srv.Close()

	a, err := New(&config.Config{AuthzMode: "remote", RemotePolicyURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := a.Authorize(request(t, nil)); err != nil {
		t.Fatalf("allowed request rejected: %v", err)
	}
	allow = false
	if err := a.Authorize(request(t, nil)); err == nil {
		t.Fatal("denied request accepted")
	}
}
