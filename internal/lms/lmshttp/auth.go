package lmshttp

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const assertionTypeJWTBearer = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// httpClient builds the authenticated client for cfg. Three modes, checked
// in order:
//   - Token: a static access token (Canvas personal/service token)
//   - PrivateKeyPEM: OAuth2 client_credentials with a private_key_jwt
//     client assertion, as mandated by LTI Advantage platforms
//   - ClientSecret: plain OAuth2 client_credentials
func httpClient(ctx context.Context, cfg Config) (*http.Client, error) {
	switch {
	case cfg.Token != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		return oauth2.NewClient(ctx, src), nil
	case len(cfg.PrivateKeyPEM) > 0:
		if cfg.TokenURL == "" || cfg.ClientID == "" {
			return nil, errors.New("private-key auth needs token URL and client id")
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		src := &assertionSource{
			tokenURL: cfg.TokenURL,
			clientID: cfg.ClientID,
			scopes:   cfg.Scopes,
			key:      key,
		}
		return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, src)), nil
	case cfg.ClientSecret != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.Client(ctx), nil
	default:
		return nil, errors.New("no credentials configured")
	}
}

// assertionSource obtains bearer tokens with a signed RS256 client
// assertion (private_key_jwt).
type assertionSource struct {
	tokenURL string
	clientID string
	scopes   []string
	key      *rsa.PrivateKey

	mu sync.Mutex
	hc *http.Client
}

func (s *assertionSource) Token() (*oauth2.Token, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.clientID,
		Subject:   s.clientID,
		Audience:  jwt.ClaimStrings{s.tokenURL},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		ID:        uuid.NewString(), // jti: platforms replay-protect assertions
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("sign client assertion: %w", err)
	}

	form := url.Values{
		"grant_type":            {"client_credentials"},
		"client_assertion_type": {assertionTypeJWTBearer},
		"client_assertion":      {assertion},
	}
	if len(s.scopes) > 0 {
		form.Set("scope", strings.Join(s.scopes, " "))
	}

	s.mu.Lock()
	hc := s.hc
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
		s.hc = hc
	}
	s.mu.Unlock()

	res, err := hc.PostForm(s.tokenURL, form)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("token endpoint: %s", res.Status)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.AccessToken == "" {
		return nil, errors.New("token endpoint returned no access_token")
	}
	tok := &oauth2.Token{AccessToken: body.AccessToken, TokenType: body.TokenType}
	if body.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return tok, nil
}
