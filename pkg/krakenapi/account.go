package krakenapi

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

// AccountService covers the private account data endpoints.
type AccountService struct {
	client *RestClient
}

// GetBalance returns all cash balances keyed by asset name, net of pending
// withdrawals.
func (s *AccountService) GetBalance(ctx context.Context) (map[string]decimal.Decimal, error) {
	var result map[string]decimal.Decimal
	if err := s.client.queryPrivate(ctx, "Balance", nil, &result); err != nil {
		return nil, err
	}

	return result, nil
}

type TradeBalance struct {
	EquivalentBalance decimal.Decimal `json:"eb"`
	TradeBalance      decimal.Decimal `json:"tb"`
	MarginAmount      decimal.Decimal `json:"m"`
	UnrealizedNet     decimal.Decimal `json:"n"`
	CostBasis         decimal.Decimal `json:"c"`
	FloatingValuation decimal.Decimal `json:"v"`
	Equity            decimal.Decimal `json:"e"`
	FreeMargin        decimal.Decimal `json:"mf"`
	MarginLevel       decimal.Decimal `json:"ml"`
}

// GetTradeBalance returns the trade balance summary denominated in the given
// base asset, or in the account default when asset is empty.
func (s *AccountService) GetTradeBalance(ctx context.Context, asset string) (*TradeBalance, error) {
	params := url.Values{}
	if asset != "" {
		params.Set("asset", asset)
	}

	var balance TradeBalance
	if err := s.client.queryPrivate(ctx, "TradeBalance", params, &balance); err != nil {
		return nil, err
	}

	return &balance, nil
}
