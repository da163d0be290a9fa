package krakenapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradeService covers the private order management endpoints.
type TradeService struct {
	client *RestClient
}

type SideType string

const (
	SideTypeBuy  SideType = "buy"
	SideTypeSell SideType = "sell"
)

type OrderType string

const (
	OrderTypeMarket          OrderType = "market"
	OrderTypeLimit           OrderType = "limit"
	OrderTypeStopLoss        OrderType = "stop-loss"
	OrderTypeTakeProfit      OrderType = "take-profit"
	OrderTypeStopLossLimit   OrderType = "stop-loss-limit"
	OrderTypeTakeProfitLimit OrderType = "take-profit-limit"
	OrderTypeSettlePosition  OrderType = "settle-position"
)

// SubmitOrder is an order submission. Pair, Side, OrderType and Volume are
// required, everything else is optional.
type SubmitOrder struct {
	Pair      string
	Side      SideType
	OrderType OrderType
	Volume    decimal.Decimal

	// Price is required for limit-style order types
	Price  decimal.Decimal
	Price2 decimal.Decimal

	Leverage      string
	UserRef       int32
	ClientOrderID string // cl_ord_id
	OrderFlags    string // comma delimited, e.g. "post,fcib"
	StartTime     string
	ExpireTime    string

	// ValidateOnly asks the exchange to validate the order without placing it
	ValidateOnly bool
}

// Validate checks that the required fields are present. All missing fields
// are reported at once.
func (o *SubmitOrder) Validate() error {
	var missing []string
	if o.Pair == "" {
		missing = append(missing, "pair")
	}
	if o.Side == "" {
		missing = append(missing, "type")
	}
	if o.Volume.IsZero() {
		missing = append(missing, "volume")
	}
	if o.OrderType == "" {
		missing = append(missing, "ordertype")
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	return nil
}

func (o *SubmitOrder) params() url.Values {
	params := url.Values{}
	params.Set("pair", o.Pair)
	params.Set("type", string(o.Side))
	params.Set("ordertype", string(o.OrderType))
	params.Set("volume", o.Volume.String())

	if !o.Price.IsZero() {
		params.Set("price", o.Price.String())
	}
	if !o.Price2.IsZero() {
		params.Set("price2", o.Price2.String())
	}
	if o.Leverage != "" {
		params.Set("leverage", o.Leverage)
	}
	if o.UserRef != 0 {
		params.Set("userref", strconv.FormatInt(int64(o.UserRef), 10))
	}
	if o.ClientOrderID != "" {
		params.Set("cl_ord_id", o.ClientOrderID)
	}
	if o.OrderFlags != "" {
		params.Set("oflags", o.OrderFlags)
	}
	if o.StartTime != "" {
		params.Set("starttm", o.StartTime)
	}
	if o.ExpireTime != "" {
		params.Set("expiretm", o.ExpireTime)
	}
	if o.ValidateOnly {
		params.Set("validate", "true")
	}

	return params
}

type OrderDescription struct {
	Pair           string    `json:"pair"`
	Side           SideType  `json:"type"`
	OrderType      OrderType `json:"ordertype"`
	Price          string    `json:"price"`
	Price2         string    `json:"price2"`
	Leverage       string    `json:"leverage"`
	Order          string    `json:"order"`
	CloseCondition string    `json:"close"`
}

type SubmitOrderResponse struct {
	Description OrderDescription `json:"descr"`
	TxIDs       []string         `json:"txid"`
}

// SubmitOrder places an order. Orders missing any required field fail locally
// with a *MissingFieldsError before any request is made.
func (s *TradeService) SubmitOrder(ctx context.Context, order *SubmitOrder) (*SubmitOrderResponse, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	var response SubmitOrderResponse
	if err := s.client.queryPrivate(ctx, "AddOrder", order.params(), &response); err != nil {
		return nil, err
	}

	return &response, nil
}

type CancelOrderResponse struct {
	Count   int  `json:"count"`
	Pending bool `json:"pending"`
}

// CancelOrder cancels the order with the given transaction id. txid may also
// be a user reference id, in which case all matching orders are cancelled.
func (s *TradeService) CancelOrder(ctx context.Context, txid string) (*CancelOrderResponse, error) {
	if txid == "" {
		return nil, errors.New("txid is required")
	}

	params := url.Values{}
	params.Set("txid", txid)

	var response CancelOrderResponse
	if err := s.client.queryPrivate(ctx, "CancelOrder", params, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

type OrderInfo struct {
	RefID       string           `json:"refid"`
	UserRef     int32            `json:"userref"`
	Status      string           `json:"status"`
	Reason      string           `json:"reason"`
	OpenTime    UnixSeconds      `json:"opentm"`
	CloseTime   UnixSeconds      `json:"closetm"`
	StartTime   UnixSeconds      `json:"starttm"`
	ExpireTime  UnixSeconds      `json:"expiretm"`
	Description OrderDescription `json:"descr"`
	Volume      decimal.Decimal  `json:"vol"`
	VolumeExec  decimal.Decimal  `json:"vol_exec"`
	Cost        decimal.Decimal  `json:"cost"`
	Fee         decimal.Decimal  `json:"fee"`
	Price       decimal.Decimal  `json:"price"`
	StopPrice   decimal.Decimal  `json:"stopprice"`
	LimitPrice  decimal.Decimal  `json:"limitprice"`
	Misc        string           `json:"misc"`
	OrderFlags  string           `json:"oflags"`
	Trades      []string         `json:"trades"`
}

type openOrdersResponse struct {
	Open map[string]OrderInfo `json:"open"`
}

// GetOpenOrders returns all open orders keyed by transaction id.
func (s *TradeService) GetOpenOrders(ctx context.Context) (map[string]OrderInfo, error) {
	var response openOrdersResponse
	if err := s.client.queryPrivate(ctx, "OpenOrders", nil, &response); err != nil {
		return nil, err
	}

	return response.Open, nil
}

type ClosedOrdersResponse struct {
	Closed map[string]OrderInfo `json:"closed"`
	Count  int                  `json:"count"`
}

// GetClosedOrders returns closed orders, most recent first. start and end are
// unix timestamps bounding the close time, 0 means unbounded. offset pages
// through the result set.
func (s *TradeService) GetClosedOrders(ctx context.Context, start, end int64, offset int) (*ClosedOrdersResponse, error) {
	params := url.Values{}
	if start > 0 {
		params.Set("start", strconv.FormatInt(start, 10))
	}
	if end > 0 {
		params.Set("end", strconv.FormatInt(end, 10))
	}
	if offset > 0 {
		params.Set("ofs", strconv.Itoa(offset))
	}

	var response ClosedOrdersResponse
	if err := s.client.queryPrivate(ctx, "ClosedOrders", params, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// QueryOrders looks up up to 50 orders by transaction id.
func (s *TradeService) QueryOrders(ctx context.Context, txids ...string) (map[string]OrderInfo, error) {
	if len(txids) == 0 {
		return nil, errors.New("at least one txid is required")
	}

	params := url.Values{}
	params.Set("txid", strings.Join(txids, ","))

	var result map[string]OrderInfo
	if err := s.client.queryPrivate(ctx, "QueryOrders", params, &result); err != nil {
		return nil, err
	}

	return result, nil
}
