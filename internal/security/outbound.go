// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// OutboundPolicy は外部サービス（認証バックエンド）への接続ポリシー。
type OutboundPolicy struct {
	// AllowPrivateNetwork がtrueの場合、ループバックやプライベートIPへの接続を許可する。
	// ローカル開発で認証バックエンドをdocker-compose上に置く場合に使用する。
	AllowPrivateNetwork bool
}

// blockedNetworks は外部接続でブロックするネットワーク範囲。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		// クラウドメタデータIP (169.254.169.254) を含む
		"169.254.0.0/16",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// NewOutboundClient は外部サービス呼び出し用のHTTPクライアントを生成する。
// timeoutはリクエスト全体（接続〜ボディ読み取り）の上限。
//
// プライベートネットワークを許可しない場合はsafeurlのクライアントを使用する。
// safeurlはDNS解決後のIPアドレスをDialerで検証するため、DNS再バインディングにも対応する。
func NewOutboundClient(policy OutboundPolicy, timeout time.Duration) *http.Client {
	if policy.AllowPrivateNetwork {
		return &http.Client{Timeout: timeout}
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("https").
		SetAllowedPorts(443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateEndpoint は起動時に外部サービスのURLを静的に検証する。
// プライベートネットワークを許可しない場合、httpsのみを受け付け、
// IPリテラルやlocalhostによる内部アドレスの指定を拒否する。
func ValidateEndpoint(rawURL string, policy OutboundPolicy) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if policy.AllowPrivateNetwork {
		if scheme != "http" && scheme != "https" {
			return fmt.Errorf("disallowed scheme: %s", scheme)
		}
		return nil
	}

	if scheme != "https" {
		return fmt.Errorf("disallowed scheme: %s (https required)", scheme)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
