// Package dbtest はPostgreSQLを使う結合テスト用のヘルパーを提供する。
package dbtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once   sync.Once
	url    string
	urlErr error
)

// URL はテスト用データベースの接続URLを返す。
// 環境変数 TEST_DATABASE_URL が設定されていればそれを使用し、
// 未設定の場合はテストプロセスごとに1つPostgreSQLコンテナを起動する。
// Dockerが利用できない環境ではテストをスキップする。
func URL(t *testing.T) string {
	t.Helper()

	if v := os.Getenv("TEST_DATABASE_URL"); v != "" {
		return v
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		ctx := context.Background()
		// コンテナはテストプロセス終了時にReaperが破棄する
		container, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("interiorly_test"),
			postgres.WithUsername("interiorly"),
			postgres.WithPassword("interiorly"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			urlErr = err
			return
		}
		url, urlErr = container.ConnectionString(ctx, "sslmode=disable")
	})

	if urlErr != nil {
		t.Skipf("テスト用データベースを起動できません（スキップ）: %v", urlErr)
	}
	return url
}
