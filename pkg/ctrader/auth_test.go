// pkg/ctrader/auth_test.go
package ctrader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestOAuthClient_AuthCodeURL(t *testing.T) {
	client, err := NewOAuthClient(OAuthConfig{
		ClientID:     "app-1",
		ClientSecret: "shh",
		RedirectURI:  "https://example.com/cb",
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewOAuthClient: %v", err)
	}

	raw := client.AuthCodeURL("trading")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if !strings.HasPrefix(raw, DefaultAuthorizeURL) {
		t.Errorf("url = %q; want prefix %q", raw, DefaultAuthorizeURL)
	}
	q := u.Query()
	if q.Get("client_id") != "app-1" || q.Get("response_type") != "code" || q.Get("scope") != "trading" {
		t.Errorf("query = %v", q)
	}
}

func TestOAuthClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"at","refreshToken":"rt","tokenType":"bearer","expiresIn":2628000}`))
	}))
	defer server.Close()

	client, err := NewOAuthClient(OAuthConfig{
		ClientID:     "app-1",
		ClientSecret: "shh",
		TokenURL:     server.URL,
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewOAuthClient: %v", err)
	}

	tok, err := client.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tok.AccessToken != "at" || tok.RefreshToken != "rt" || tok.ExpiresIn != 2628000 {
		t.Errorf("token = %+v", tok)
	}
}

func TestOAuthClient_RefreshErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer server.Close()

		client, _ := NewOAuthClient(OAuthConfig{ClientID: "a", ClientSecret: "b", TokenURL: server.URL}, testLogger(t))
		_, err := client.Refresh(context.Background(), "rt")
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("err = %v; want HTTPError", err)
		}
		if httpErr.StatusCode != http.StatusForbidden {
			t.Errorf("StatusCode = %d", httpErr.StatusCode)
		}
	})

	t.Run("error payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"errorCode":"INVALID_GRANT","description":"refresh token expired"}`))
		}))
		defer server.Close()

		client, _ := NewOAuthClient(OAuthConfig{ClientID: "a", ClientSecret: "b", TokenURL: server.URL}, testLogger(t))
		_, err := client.Refresh(context.Background(), "rt")
		if err == nil || !strings.Contains(err.Error(), "INVALID_GRANT") {
			t.Errorf("err = %v; want INVALID_GRANT", err)
		}
	})
}

func TestNewOAuthClient_Validation(t *testing.T) {
	if _, err := NewOAuthClient(OAuthConfig{}, testLogger(t)); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()
	if cfg.Encoding != EncodingProtobuf {
		t.Errorf("Encoding = %q", cfg.Encoding)
	}
	if cfg.HeartbeatInterval.Seconds() != 30 {
		t.Errorf("HeartbeatInterval = %v", cfg.HeartbeatInterval)
	}
	if cfg.ConnectBackoff.InitialInterval.Seconds() != 5 || cfg.ConnectBackoff.Multiplier != 1 {
		t.Errorf("ConnectBackoff = %+v", cfg.ConnectBackoff)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}

	bad := Config{URL: "http://not-ws"}
	bad.applyDefaults()
	if err := bad.validate(); err == nil {
		t.Error("expected error for non-ws URL")
	}
}
