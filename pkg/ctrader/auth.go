// pkg/ctrader/auth.go
package ctrader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// OAuthConfig — параметры OAuth2-обмена с openapi.ctrader.com.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`

	// AuthorizeURL/TokenURL переопределяются в тестах.
	AuthorizeURL string `mapstructure:"authorize_url"`
	TokenURL     string `mapstructure:"token_url"`

	Timeout time.Duration `mapstructure:"timeout"` // если 0 — 30s
}

func (c *OAuthConfig) applyDefaults() {
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = DefaultAuthorizeURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c OAuthConfig) validate() error {
	var errs []string
	if c.ClientID == "" {
		errs = append(errs, "ClientID is required")
	}
	if c.ClientSecret == "" {
		errs = append(errs, "ClientSecret is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid OAuthConfig: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TokenResponse — ответ token-эндпоинта.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`

	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"description"`
}

// OAuthClient получает и обновляет токены доступа.
type OAuthClient struct {
	cfg  OAuthConfig
	http *http.Client
	log  *logger.Logger
}

// NewOAuthClient создаёт OAuth-клиент.
func NewOAuthClient(cfg OAuthConfig, log *logger.Logger) (*OAuthClient, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &OAuthClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.Named("oauth"),
	}, nil
}

// AuthCodeURL строит адрес страницы согласия для пользователя.
func (c *OAuthClient) AuthCodeURL(scope string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("response_type", "code")
	if scope != "" {
		q.Set("scope", scope)
	}
	return c.cfg.AuthorizeURL + "?" + q.Encode()
}

// ExchangeCode обменивает authorization code на пару токенов.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	q := url.Values{}
	q.Set("grant_type", "authorization_code")
	q.Set("code", code)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("client_id", c.cfg.ClientID)
	q.Set("client_secret", c.cfg.ClientSecret)
	return c.token(ctx, q)
}

// Refresh обменивает refresh token на новую пару токенов.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	q.Set("refresh_token", refreshToken)
	q.Set("client_id", c.cfg.ClientID)
	q.Set("client_secret", c.cfg.ClientSecret)
	return c.token(ctx, q)
}

func (c *OAuthClient) token(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth: token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("oauth: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("oauth: decode response: %w", err)
	}
	if tok.ErrorCode != "" {
		return nil, fmt.Errorf("oauth: %s: %s", tok.ErrorCode, tok.ErrorDescription)
	}
	c.log.Sugar().Infow("oauth: token obtained", "expires_in", tok.ExpiresIn)
	return &tok, nil
}
