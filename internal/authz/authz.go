// Package authz decides whether an incoming request may proceed. The
// authorizer variant is chosen once at startup from configuration; handlers
// never see the difference.
package authz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/transcriptomics-backend/internal/config"
)

// ErrDenied is returned by every authorizer when the request is rejected.
var ErrDenied = errors.New("authorization denied")

type Authorizer interface {
	// Authorize returns nil when the request may proceed and an error
	// wrapping ErrDenied otherwise.
	Authorize(r *http.Request) error
}

// New builds the authorizer named by cfg.AuthzMode.
func New(cfg *config.Config) (Authorizer, error) {
	switch cfg.AuthzMode {
	case "allow-all":
		return allowAll{}, nil
	case "api-key":
		if cfg.APIKeyHash == "" {
			return nil, errors.New("api-key authz mode requires AUTHZ_API_KEY_HASH")
		}
		return &apiKeyAuthorizer{hash: []byte(cfg.APIKeyHash)}, nil
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, errors.New("jwt authz mode requires AUTHZ_JWT_SECRET")
		}
		return &jwtAuthorizer{secret: []byte(cfg.JWTSecret)}, nil
	case "remote":
		if cfg.RemotePolicyURL == "" {
			return nil, errors.New("remote authz mode requires AUTHZ_POLICY_URL")
		}
		return &remoteAuthorizer{
			url:    cfg.RemotePolicyURL,
			client: &http.Client{Timeout: 10 * time.Second},
		}, nil
	default:
		return nil, fmt.Errorf("unknown authz mode %q", cfg.AuthzMode)
	}
}

type allowAll struct{}

func (allowAll) Authorize(*http.Request) error { return nil }

// apiKeyAuthorizer compares the bearer token (or X-API-Key header) against a
// stored bcrypt hash, so the plaintext key never lives in configuration.
type apiKeyAuthorizer struct {
	hash []byte
}

func (a *apiKeyAuthorizer) Authorize(r *http.Request) error {
	key := bearerToken(r)
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	if key == "" {
		return fmt.Errorf("%w: missing api key", ErrDenied)
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(key)); err != nil {
		return fmt.Errorf("%w: invalid api key", ErrDenied)
	}
	return nil
}

type jwtAuthorizer struct {
	secret []byte
}

func (a *jwtAuthorizer) Authorize(r *http.Request) error {
	tokenString := bearerToken(r)
	if tokenString == "" {
		return fmt.Errorf("%w: missing bearer token", ErrDenied)
	}
	_, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDenied, err.Error())
	}
	return nil
}

// remoteAuthorizer delegates the decision to an external policy endpoint,
// posting the method and path and expecting {"result": true} back.
type remoteAuthorizer struct {
	url    string
	client *http.Client
}

func (a *remoteAuthorizer) Authorize(r *http.Request) error {
	payload, err := json.Marshal(map[string]any{
		"input": map[string]any{
			"method":        r.Method,
			"path":          r.URL.Path,
			"authorization": r.Header.Get("Authorization"),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: encoding policy request: %s", ErrDenied, err.Error())
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: building policy request: %s", ErrDenied, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: policy endpoint unreachable: %s", ErrDenied, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: policy endpoint returned %d", ErrDenied, resp.StatusCode)
	}

	var decision struct {
		Result bool `json:"result"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decision); err != nil {
		return fmt.Errorf("%w: decoding policy response: %s", ErrDenied, err.Error())
	}
	if !decision.Result {
		return fmt.Errorf("%w: policy rejected the request", ErrDenied)
	}
	return nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}
