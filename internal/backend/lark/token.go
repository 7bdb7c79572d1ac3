package lark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"tasksync/internal/taskerr"
)

// expirySlack refreshes the tenant token this long before the service
// would reject it, so in-flight requests never carry a token about to
// lapse.
const expirySlack = 30 * time.Second

// tenantTokenSource exchanges app credentials for a tenant access token.
// Wrap it in oauth2.ReuseTokenSource so the exchange only happens on
// first use and on expiry.
type tenantTokenSource struct {
	baseURL   string
	appID     string
	appSecret string
	client    *http.Client
}

// TokenSource returns a caching token source for the given credentials.
func TokenSource(baseURL, appID, appSecret string, client *http.Client) oauth2.TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return oauth2.ReuseTokenSource(nil, &tenantTokenSource{
		baseURL:   baseURL,
		appID:     appID,
		appSecret: appSecret,
		client:    client,
	})
}

func (s *tenantTokenSource) Token() (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"app_id":     s.appID,
		"app_secret": s.appSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	resp, err := s.client.Post(
		s.baseURL+"/auth/v3/tenant_access_token/internal",
		"application/json; charset=utf-8",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, taskerr.FromTransport(err)
	}
	defer resp.Body.Close()

	var out struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if resp.StatusCode >= 300 || out.Code != 0 {
		return nil, taskerr.Classify(resp.StatusCode, out.Code, out.Msg)
	}

	return &oauth2.Token{
		AccessToken: out.TenantAccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Duration(out.Expire)*time.Second - expirySlack),
	}, nil
}
