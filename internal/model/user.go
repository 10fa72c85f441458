package model

import "time"

// User は認証バックエンドのユーザーをローカルにミラーしたもの。
// IsAdmin はナビゲーションで登録導線を抑止するための管理者フラグ。
type User struct {
	ID        string
	Email     string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// 作成後に変更されることはなく、再ログイン時は丸ごと置き換えられる。
type Session struct {
	ID          string
	UserID      string
	Email       string
	Name        string
	AccessToken string // 認証バックエンドが発行したアクセストークン
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
