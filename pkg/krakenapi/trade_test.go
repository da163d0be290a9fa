package krakenapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tradeforge/krakenapi/pkg/testing/httptesting"
)

func TestSubmitOrder_Validate(t *testing.T) {
	order := &SubmitOrder{}
	err := order.Validate()
	assert.Error(t, err)

	var missing *MissingFieldsError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"pair", "type", "volume", "ordertype"}, missing.Fields)

	order = &SubmitOrder{
		Pair:   "XBTUSD",
		Volume: decimal.RequireFromString("1.25"),
	}
	err = order.Validate()
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"type", "ordertype"}, missing.Fields)

	order.Side = SideTypeBuy
	order.OrderType = OrderTypeMarket
	assert.NoError(t, order.Validate())
}

func TestTradeService_SubmitOrder_MissingFields(t *testing.T) {
	var saved *http.Request
	client := NewClient().Auth(testAPIKey, testAPISecret)
	client.HttpClient = httptesting.HttpClientSaver(&saved, "{}")

	_, err := client.TradeService.SubmitOrder(context.Background(), &SubmitOrder{
		Pair: "XBTUSD",
	})
	assert.ErrorContains(t, err, "missing required fields")
	assert.ErrorContains(t, err, "type")
	assert.ErrorContains(t, err, "volume")
	assert.ErrorContains(t, err, "ordertype")
	assert.Nil(t, saved, "no request should be sent for an invalid order")
}

func TestTradeService_SubmitOrder(t *testing.T) {
	var saved *http.Request
	client := NewClient().Auth(testAPIKey, testAPISecret)
	client.HttpClient = httptesting.HttpClientSaverFromFile(&saved, "testdata/add_order.json")

	response, err := client.TradeService.SubmitOrder(context.Background(), &SubmitOrder{
		Pair:          "XBTUSD",
		Side:          SideTypeBuy,
		OrderType:     OrderTypeLimit,
		Volume:        decimal.RequireFromString("1.25"),
		Price:         decimal.RequireFromString("27500.0"),
		ClientOrderID: "6d1b345e-2821-40e2-ad83-4ecb18a06876",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"OU22CG-KLAF2-FWUDD7"}, response.TxIDs)
	assert.Equal(t, "buy 1.25000000 XBTUSD @ limit 27500.0", response.Description.Order)

	assert.Equal(t, "/0/private/AddOrder", saved.URL.Path)

	rawBody, err := io.ReadAll(saved.Body)
	assert.NoError(t, err)

	body, err := url.ParseQuery(string(rawBody))
	assert.NoError(t, err)
	assert.Equal(t, "XBTUSD", body.Get("pair"))
	assert.Equal(t, "buy", body.Get("type"))
	assert.Equal(t, "limit", body.Get("ordertype"))
	assert.Equal(t, "1.25", body.Get("volume"))
	assert.Equal(t, "27500.0", body.Get("price"))
	assert.Equal(t, "6d1b345e-2821-40e2-ad83-4ecb18a06876", body.Get("cl_ord_id"))
	assert.NotEmpty(t, body.Get("nonce"))
}

func TestTradeService_CancelOrder(t *testing.T) {
	var saved *http.Request
	client := NewClient().Auth(testAPIKey, testAPISecret)
	client.HttpClient = httptesting.HttpClientSaverFromFile(&saved, "testdata/cancel_order.json")

	response, err := client.TradeService.CancelOrder(context.Background(), "OUF4EM-FRGI2-MQMWZD")
	assert.NoError(t, err)
	assert.Equal(t, 1, response.Count)
	assert.False(t, response.Pending)

	assert.Equal(t, "/0/private/CancelOrder", saved.URL.Path)

	rawBody, err := io.ReadAll(saved.Body)
	assert.NoError(t, err)

	body, err := url.ParseQuery(string(rawBody))
	assert.NoError(t, err)
	assert.Equal(t, "OUF4EM-FRGI2-MQMWZD", body.Get("txid"))
	assert.NotEmpty(t, body.Get("nonce"))
}

func TestTradeService_CancelOrder_EmptyTxID(t *testing.T) {
	client := NewClient().Auth(testAPIKey, testAPISecret)
	_, err := client.TradeService.CancelOrder(context.Background(), "")
	assert.ErrorContains(t, err, "txid is required")
}

func TestTradeService_GetOpenOrders(t *testing.T) {
	client := NewClient().Auth(testAPIKey, testAPISecret)
	client.HttpClient = httptesting.HttpClientFromFile("testdata/open_orders.json")

	orders, err := client.TradeService.GetOpenOrders(context.Background())
	assert.NoError(t, err)
	assert.Len(t, orders, 1)

	order, ok := orders["OQCLML-BW3P3-BUCMWZ"]
	assert.True(t, ok)
	assert.Equal(t, "open", order.Status)
	assert.Equal(t, "XBTUSD", order.Description.Pair)
	assert.Equal(t, SideTypeBuy, order.Description.Side)
	assert.Equal(t, OrderTypeLimit, order.Description.OrderType)
	assert.True(t, order.Volume.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, order.VolumeExec.Equal(decimal.RequireFromString("0.375")))
	assert.Equal(t, int64(1688666559), order.OpenTime.Time().Unix())
}

func TestTradeService_GetClosedOrders(t *testing.T) {
	var saved *http.Request
	client := NewClient().Auth(testAPIKey, testAPISecret)
	client.HttpClient = httptesting.HttpClientSaverFromFile(&saved, "testdata/closed_orders.json")

	response, err := client.TradeService.GetClosedOrders(context.Background(), 1688100000, 1688200000, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, response.Count)

	order, ok := response.Closed["O37652-RJWRT-IMO74O"]
	assert.True(t, ok)
	assert.Equal(t, "canceled", order.Status)
	assert.Equal(t, "User requested", order.Reason)
	assert.Equal(t, int32(36493663), order.UserRef)

	rawBody, err := io.ReadAll(saved.Body)
	assert.NoError(t, err)

	body, err := url.ParseQuery(string(rawBody))
	assert.NoError(t, err)
	assert.Equal(t, "1688100000", body.Get("start"))
	assert.Equal(t, "1688200000", body.Get("end"))
}

func TestTradeService_QueryOrders(t *testing.T) {
	client := NewClient().Auth(testAPIKey, testAPISecret)
	client.HttpClient = httptesting.HttpClientFromFile("testdata/query_orders.json")

	orders, err := client.TradeService.QueryOrders(context.Background(), "OBCMZD-JIEE7-77TH3F")
	assert.NoError(t, err)

	order, ok := orders["OBCMZD-JIEE7-77TH3F"]
	assert.True(t, ok)
	assert.Equal(t, "closed", order.Status)
	assert.True(t, order.VolumeExec.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, []string{"TZX2WP-XSEOP-FP7WYR"}, order.Trades)

	_, err = client.TradeService.QueryOrders(context.Background())
	assert.ErrorContains(t, err, "at least one txid is required")
}
