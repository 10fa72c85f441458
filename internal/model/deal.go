package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deal はデザイナーが掲載するキャンペーン情報を表す。
// designer_deals と designers を結合した読み取り専用の射影。
type Deal struct {
	ID              string
	DesignerID      string
	Title           string
	Description     string // サニタイズ済みHTML
	DiscountPercent decimal.Decimal
	OriginalPrice   decimal.NullDecimal
	DealPrice       decimal.NullDecimal
	ImageURL        string
	IsFeatured      bool
	ValidFrom       time.Time
	ValidUntil      time.Time
	CreatedAt       time.Time

	Designer DealDesigner
}

// DealDesigner はキャンペーンに表示するデザイナー属性。
type DealDesigner struct {
	FullName    string
	CompanyName string
	City        string
	AvatarURL   string
	Rating      decimal.NullDecimal
}
