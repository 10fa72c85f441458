package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/interiorly/interiorly/internal/model"
)

// DealServiceInterface はキャンペーンハンドラーが必要とするサービスインターフェース。
type DealServiceInterface interface {
	ListActive(ctx context.Context) ([]*model.Deal, error)
}

// DealHandler はキャンペーン一覧のHTTPハンドラー。
type DealHandler struct {
	service DealServiceInterface
}

// NewDealHandler はDealHandlerを生成する。
func NewDealHandler(service DealServiceInterface) *DealHandler {
	return &DealHandler{service: service}
}

type dealDesignerResponse struct {
	ID          string              `json:"id"`
	FullName    string              `json:"full_name"`
	CompanyName string              `json:"company_name,omitempty"`
	City        string              `json:"city,omitempty"`
	AvatarURL   string              `json:"avatar_url,omitempty"`
	Rating      decimal.NullDecimal `json:"rating"`
}

type dealResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	OriginalPrice   decimal.NullDecimal  `json:"original_price"`
	DealPrice       decimal.NullDecimal  `json:"deal_price"`
	Savings         decimal.NullDecimal  `json:"savings"`
	ImageURL        string               `json:"image_url,omitempty"`
	IsFeatured      bool                 `json:"is_featured"`
	ValidFrom       time.Time            `json:"valid_from"`
	ValidUntil      time.Time            `json:"valid_until"`
	Designer        dealDesignerResponse `json:"designer"`
}

// ListDeals は現在有効なキャンペーンを返す。
// GET /api/deals
func (h *DealHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.service.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]dealResponse, len(deals))
	for i, d := range deals {
		resp[i] = toDealResponse(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"deals": resp})
}

func toDealResponse(d *model.Deal) dealResponse {
	return dealResponse{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		DiscountPercent: d.DiscountPercent,
		OriginalPrice:   d.OriginalPrice,
		DealPrice:       d.DealPrice,
		Savings:         savings(d),
		ImageURL:        d.ImageURL,
		IsFeatured:      d.IsFeatured,
		ValidFrom:       d.ValidFrom,
		ValidUntil:      d.ValidUntil,
		Designer: dealDesignerResponse{
			ID:          d.DesignerID,
			FullName:    d.Designer.FullName,
			CompanyName: d.Designer.CompanyName,
			City:        d.Designer.City,
			AvatarURL:   d.Designer.AvatarURL,
			Rating:      d.Designer.Rating,
		},
	}
}

// savings は通常価格とキャンペーン価格の差額。どちらかが未設定の場合はnull。
func savings(d *model.Deal) decimal.NullDecimal {
	if !d.OriginalPrice.Valid || !d.DealPrice.Valid {
		return decimal.NullDecimal{}
	}
	diff := d.OriginalPrice.Decimal.Sub(d.DealPrice.Decimal)
	if diff.IsNegative() {
		diff = decimal.Zero
	}
	return decimal.NewNullDecimal(diff.Round(2))
}
