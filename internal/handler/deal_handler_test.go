package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interiorly/interiorly/internal/model"
)

func TestDealHandler_ListDeals(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	svc := &mockDealService{
		listActiveFn: func(ctx context.Context) ([]*model.Deal, error) {
			return []*model.Deal{
				{
					ID:              "deal-1",
					DesignerID:      "d-1",
					Title:           "Autumn kitchen refresh",
					Description:     "<p>20% off</p>",
					DiscountPercent: decimal.RequireFromString("20"),
					OriginalPrice:   decimal.NewNullDecimal(decimal.RequireFromString("1500.00")),
					DealPrice:       decimal.NewNullDecimal(decimal.RequireFromString("1200.00")),
					IsFeatured:      true,
					ValidFrom:       from,
					ValidUntil:      from.AddDate(0, 1, 0),
					Designer: model.DealDesigner{
						FullName: "Ada Lovelace",
						City:     "Lisbon",
						Rating:   decimal.NewNullDecimal(decimal.RequireFromString("4.80")),
					},
				},
				{
					ID:              "deal-2",
					DesignerID:      "d-2",
					Title:           "Free consultation",
					DiscountPercent: decimal.Zero,
					ValidFrom:       from,
					ValidUntil:      from.AddDate(0, 0, 7),
				},
			}, nil
		},
	}
	h := NewDealHandler(svc)

	w := httptest.NewRecorder()
	h.ListDeals(w, httptest.NewRequest(http.MethodGet, "/api/deals", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Deals []map[string]any `json:"deals"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Deals, 2)

	first := body.Deals[0]
	assert.Equal(t, "deal-1", first["id"])
	assert.Equal(t, "20", first["discount_percent"])
	assert.Equal(t, "1500", first["original_price"])
	assert.Equal(t, "300", first["savings"])
	assert.Equal(t, true, first["is_featured"])
	designer := first["designer"].(map[string]any)
	assert.Equal(t, "d-1", designer["id"])
	assert.Equal(t, "4.8", designer["rating"])

	second := body.Deals[1]
	assert.Nil(t, second["original_price"])
	assert.Nil(t, second["savings"])
}

func TestDealHandler_ListDeals_Empty(t *testing.T) {
	h := NewDealHandler(&mockDealService{})

	w := httptest.NewRecorder()
	h.ListDeals(w, httptest.NewRequest(http.MethodGet, "/api/deals", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deals":[]}`, w.Body.String())
}

func TestDealHandler_ListDeals_Error(t *testing.T) {
	h := NewDealHandler(&mockDealService{
		listActiveFn: func(ctx context.Context) ([]*model.Deal, error) {
			return nil, errors.New("failed to list deals: timeout")
		},
	})

	w := httptest.NewRecorder()
	h.ListDeals(w, httptest.NewRequest(http.MethodGet, "/api/deals", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, model.ErrCodeInternal, decodeBody(t, w)["code"])
}

func TestSavings(t *testing.T) {
	tests := []struct {
		name     string
		original decimal.NullDecimal
		deal     decimal.NullDecimal
		want     decimal.NullDecimal
	}{
		{
			name:     "difference",
			original: decimal.NewNullDecimal(decimal.RequireFromString("99.99")),
			deal:     decimal.NewNullDecimal(decimal.RequireFromString("79.49")),
			want:     decimal.NewNullDecimal(decimal.RequireFromString("20.50")),
		},
		{
			name:     "deal above original clamps to zero",
			original: decimal.NewNullDecimal(decimal.RequireFromString("10")),
			deal:     decimal.NewNullDecimal(decimal.RequireFromString("12")),
			want:     decimal.NewNullDecimal(decimal.Zero),
		},
		{
			name:     "missing price",
			original: decimal.NewNullDecimal(decimal.RequireFromString("10")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := savings(&model.Deal{OriginalPrice: tt.original, DealPrice: tt.deal})
			assert.Equal(t, tt.want.Valid, got.Valid)
			if tt.want.Valid {
				assert.True(t, tt.want.Decimal.Equal(got.Decimal), "got %s, want %s", got.Decimal, tt.want.Decimal)
			}
		})
	}
}
