package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Identity は認証バックエンドで認証されたユーザーを表す。
// AccessToken はメール確認待ちのサインアップでは空になる。
type Identity struct {
	UserID      string
	Email       string
	Name        string
	AccessToken string
	ExpiresAt   time.Time
}

// Gateway は外部の認証バックエンドとのインターフェース。
// 失敗は*Errorとして分類済みで返す。通信エラーなど分類できないものはそのまま返す。
type Gateway interface {
	// SignUp はメールアドレスとパスワードでアカウントを作成する。
	SignUp(ctx context.Context, name, email, password string) (*Identity, error)
	// SignIn はメールアドレスとパスワードで認証する。
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignOut はアクセストークンを失効させる。
	SignOut(ctx context.Context, accessToken string) error
}

// HostedClientConfig はHostedClientの設定。
type HostedClientConfig struct {
	BaseURL string // 例: https://xxxx.example.co
	APIKey  string
}

// HostedClient はGoTrue互換REST APIの認証バックエンドクライアント。
type HostedClient struct {
	config     HostedClientConfig
	httpClient *http.Client
	verifier   *TokenVerifier
}

// NewHostedClient はHostedClientを生成する。
// httpClientのタイムアウトがバックエンド呼び出しの上限になる。
func NewHostedClient(config HostedClientConfig, httpClient *http.Client, verifier *TokenVerifier) *HostedClient {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &HostedClient{
		config:     config,
		httpClient: httpClient,
		verifier:   verifier,
	}
}

// signUpRequest はサインアップエンドポイントのリクエストボディ。
type signUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data"`
}

// passwordGrantRequest はパスワードグラントのリクエストボディ。
type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// backendUser はバックエンドのユーザーオブジェクト。
type backendUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

// sessionResponse はトークン発行時のレスポンス。
// メール確認が必要なサインアップではユーザーオブジェクトのみがトップレベルで返る。
type sessionResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        *backendUser `json:"user"`

	backendUser
}

// errorResponse はバックエンドのエラーレスポンス。
// バージョンにより msg / message / error_description のいずれかにメッセージが入る。
type errorResponse struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignUp はメールアドレスとパスワードでアカウントを作成する。
// 氏名はユーザーメタデータとして保存される。
func (c *HostedClient) SignUp(ctx context.Context, name, email, password string) (*Identity, error) {
	var resp sessionResponse
	err := c.post(ctx, "/auth/v1/signup", "", signUpRequest{
		Email:    email,
		Password: password,
		Data:     map[string]string{"name": name},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.toIdentity(&resp)
}

// SignIn はパスワードグラントでアクセストークンを取得する。
func (c *HostedClient) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var resp sessionResponse
	err := c.post(ctx, "/auth/v1/token?grant_type=password", "", passwordGrantRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in sign-in response")
	}
	return c.toIdentity(&resp)
}

// SignOut はアクセストークンを失効させる。
func (c *HostedClient) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return c.post(ctx, "/auth/v1/logout", accessToken, nil, nil)
}

// toIdentity はレスポンスからIdentityを組み立てる。
// アクセストークンがある場合は署名を検証し、subとユーザーIDの一致を確認する。
func (c *HostedClient) toIdentity(resp *sessionResponse) (*Identity, error) {
	user := resp.User
	if user == nil {
		user = &resp.backendUser
	}
	if user.ID == "" {
		return nil, fmt.Errorf("empty user id in auth response")
	}

	identity := &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.UserMetadata.Name,
	}

	if resp.AccessToken == "" {
		return identity, nil
	}

	claims, err := c.verifier.Verify(resp.AccessToken)
	if err != nil {
		return nil, err
	}
	if claims.UserID != user.ID {
		return nil, fmt.Errorf("access token subject %q does not match user %q", claims.UserID, user.ID)
	}
	if identity.Name == "" {
		identity.Name = claims.Name
	}

	identity.AccessToken = resp.AccessToken
	identity.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return identity, nil
}

// post はJSONボディでPOSTし、成功時はoutにデコードする。
// 2xx以外のレスポンスは*Errorに分類して返す。
func (c *HostedClient) post(ctx context.Context, path, bearer string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode auth request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.APIKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		// パースできないボディはメッセージなしとして分類する
		_ = json.Unmarshal(respBody, &e)
		return NewError(resp.StatusCode, e.ErrorCode, e.text())
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse auth response: %w", err)
	}
	return nil
}

// compile-time interface check
var _ Gateway = (*HostedClient)(nil)
