package krakenapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MarketDataService covers the public, unauthenticated endpoints.
type MarketDataService struct {
	client *RestClient
}

// UnixSeconds is a unix timestamp in seconds, possibly fractional, the way
// the exchange encodes times inside result payloads.
type UnixSeconds float64

func (s UnixSeconds) Time() time.Time {
	sec, frac := int64(s), float64(s)-float64(int64(s))
	return time.Unix(sec, int64(frac*float64(time.Second)))
}

type ServerTime struct {
	UnixTime int64  `json:"unixtime"`
	RFC1123  string `json:"rfc1123"`
}

func (t ServerTime) Time() time.Time {
	return time.Unix(t.UnixTime, 0)
}

// GetTime queries the server time. It is also a cheap connectivity check.
func (s *MarketDataService) GetTime(ctx context.Context) (*ServerTime, error) {
	var serverTime ServerTime
	if err := s.client.queryPublic(ctx, "Time", nil, &serverTime); err != nil {
		return nil, err
	}

	return &serverTime, nil
}

type Asset struct {
	AssetClass      string `json:"aclass"`
	Altname         string `json:"altname"`
	Decimals        int    `json:"decimals"`
	DisplayDecimals int    `json:"display_decimals"`
}

// GetAssets returns asset metadata, keyed by the exchange's asset name
// (e.g. "XXBT"). Passing no arguments returns all assets.
func (s *MarketDataService) GetAssets(ctx context.Context, assets ...string) (map[string]Asset, error) {
	params := url.Values{}
	if len(assets) > 0 {
		params.Set("asset", strings.Join(assets, ","))
	}

	var result map[string]Asset
	if err := s.client.queryPublic(ctx, "Assets", params, &result); err != nil {
		return nil, err
	}

	return result, nil
}

type AssetPair struct {
	Altname         string          `json:"altname"`
	WSName          string          `json:"wsname"`
	AssetClassBase  string          `json:"aclass_base"`
	Base            string          `json:"base"`
	AssetClassQuote string          `json:"aclass_quote"`
	Quote           string          `json:"quote"`
	PairDecimals    int             `json:"pair_decimals"`
	LotDecimals     int             `json:"lot_decimals"`
	LotMultiplier   int             `json:"lot_multiplier"`
	OrderMin        decimal.Decimal `json:"ordermin"`
	CostMin         decimal.Decimal `json:"costmin"`
	TickSize        decimal.Decimal `json:"tick_size"`
	Status          string          `json:"status"`
}

// GetAssetPairs returns tradable pair metadata, keyed by pair name
// (e.g. "XXBTZUSD"). Passing no arguments returns all pairs.
func (s *MarketDataService) GetAssetPairs(ctx context.Context, pairs ...string) (map[string]AssetPair, error) {
	params := url.Values{}
	if len(pairs) > 0 {
		params.Set("pair", strings.Join(pairs, ","))
	}

	var result map[string]AssetPair
	if err := s.client.queryPublic(ctx, "AssetPairs", params, &result); err != nil {
		return nil, err
	}

	return result, nil
}

/*
ticker payload sample:

	"XXBTZUSD": {
	  "a": ["30300.10000", "1", "1.000"],
	  "b": ["30300.00000", "1", "1.000"],
	  "c": ["30303.20000", "0.00067643"],
	  "v": ["4083.67001100", "4412.73601799"],
	  "p": ["30706.77771", "30689.13205"],
	  "t": [34619, 38907],
	  "l": ["29868.30000", "29868.30000"],
	  "h": ["31631.00000", "31631.00000"],
	  "o": "30502.80000"
	}
*/
type TickerInfo struct {
	Ask       []decimal.Decimal `json:"a"` // price, whole lot volume, lot volume
	Bid       []decimal.Decimal `json:"b"`
	LastTrade []decimal.Decimal `json:"c"` // price, lot volume
	Volume    []decimal.Decimal `json:"v"` // today, last 24 hours
	VWAP      []decimal.Decimal `json:"p"`
	NumTrades []int64           `json:"t"`
	Low       []decimal.Decimal `json:"l"`
	High      []decimal.Decimal `json:"h"`
	Open      decimal.Decimal   `json:"o"`
}

// GetTicker returns ticker information for the given pairs, keyed by pair name.
func (s *MarketDataService) GetTicker(ctx context.Context, pairs ...string) (map[string]TickerInfo, error) {
	if len(pairs) == 0 {
		return nil, errors.New("at least one pair is required")
	}

	params := url.Values{}
	params.Set("pair", strings.Join(pairs, ","))

	var result map[string]TickerInfo
	if err := s.client.queryPublic(ctx, "Ticker", params, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// OHLCEntry is one candle: [time, open, high, low, close, vwap, volume, count]
type OHLCEntry struct {
	Time   int64
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	VWAP   decimal.Decimal
	Volume decimal.Decimal
	Count  int64
}

func (e *OHLCEntry) UnmarshalJSON(data []byte) error {
	fields := []interface{}{
		&e.Time, &e.Open, &e.High, &e.Low, &e.Close, &e.VWAP, &e.Volume, &e.Count,
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) != len(fields) {
		return errors.Errorf("ohlc entry has %d fields, expected %d", len(raw), len(fields))
	}

	for i, field := range fields {
		if err := json.Unmarshal(raw[i], field); err != nil {
			return err
		}
	}

	return nil
}

type OHLCResponse struct {
	Pair    string
	Entries []OHLCEntry

	// Last is the id to use as "since" when polling for new data
	Last int64
}

// GetOHLC returns up to 720 candles for the pair. interval is in minutes,
// 0 means the server default (1). since of 0 returns the most recent candles.
func (s *MarketDataService) GetOHLC(ctx context.Context, pair string, interval int, since int64) (*OHLCResponse, error) {
	params := url.Values{}
	params.Set("pair", pair)
	if interval > 0 {
		params.Set("interval", strconv.Itoa(interval))
	}
	if since > 0 {
		params.Set("since", strconv.FormatInt(since, 10))
	}

	var raw map[string]json.RawMessage
	if err := s.client.queryPublic(ctx, "OHLC", params, &raw); err != nil {
		return nil, err
	}

	response := OHLCResponse{Pair: pair}
	if err := decodeKeyedResult(raw, pair, &response.Entries, &response.Last); err != nil {
		return nil, err
	}

	return &response, nil
}

// PriceLevel is one order book level: [price, volume, timestamp]
type PriceLevel struct {
	Price     decimal.Decimal
	Volume    decimal.Decimal
	Timestamp int64
}

func (l *PriceLevel) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) != 3 {
		return errors.Errorf("price level has %d fields, expected 3", len(raw))
	}

	if err := json.Unmarshal(raw[0], &l.Price); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &l.Volume); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &l.Timestamp)
}

type OrderBook struct {
	Asks []PriceLevel `json:"asks"`
	Bids []PriceLevel `json:"bids"`
}

// GetDepth returns the order book for the pair. count limits the number of
// levels per side, 0 means the server default.
func (s *MarketDataService) GetDepth(ctx context.Context, pair string, count int) (*OrderBook, error) {
	params := url.Values{}
	params.Set("pair", pair)
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}

	var result map[string]OrderBook
	if err := s.client.queryPublic(ctx, "Depth", params, &result); err != nil {
		return nil, err
	}

	book, ok := result[pair]
	if !ok {
		// the exchange keys the book by its canonical pair name, which may
		// differ from the requested alias
		for _, v := range result {
			book = v
			ok = true
			break
		}
	}

	if !ok {
		return nil, errors.Errorf("pair %s not found in depth response", pair)
	}

	return &book, nil
}

// TradeEntry is one public trade:
// [price, volume, time, buy/sell, market/limit, miscellaneous, trade_id]
type TradeEntry struct {
	Price     decimal.Decimal
	Volume    decimal.Decimal
	Time      UnixSeconds
	Side      string // "b" or "s"
	OrderType string // "m" or "l"
	Misc      string
	TradeID   int64
}

func (e *TradeEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// the trailing trade id was added later, older payloads have 6 fields
	if len(raw) < 6 {
		return errors.Errorf("trade entry has %d fields, expected at least 6", len(raw))
	}

	fields := []interface{}{
		&e.Price, &e.Volume, &e.Time, &e.Side, &e.OrderType, &e.Misc,
	}
	for i, field := range fields {
		if err := json.Unmarshal(raw[i], field); err != nil {
			return err
		}
	}

	if len(raw) > 6 {
		return json.Unmarshal(raw[6], &e.TradeID)
	}

	return nil
}

type TradesResponse struct {
	Pair   string
	Trades []TradeEntry
	Last   string
}

// GetTrades returns recent trades for the pair. since is the pagination
// cursor returned in a previous response's Last field, empty for the most
// recent trades.
func (s *MarketDataService) GetTrades(ctx context.Context, pair string, since string) (*TradesResponse, error) {
	params := url.Values{}
	params.Set("pair", pair)
	if since != "" {
		params.Set("since", since)
	}

	var raw map[string]json.RawMessage
	if err := s.client.queryPublic(ctx, "Trades", params, &raw); err != nil {
		return nil, err
	}

	response := TradesResponse{Pair: pair}
	if err := decodeKeyedResult(raw, pair, &response.Trades, &response.Last); err != nil {
		return nil, err
	}

	return &response, nil
}

// SpreadEntry is one bid/ask sample: [time, bid, ask]
type SpreadEntry struct {
	Time int64
	Bid  decimal.Decimal
	Ask  decimal.Decimal
}

func (e *SpreadEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) != 3 {
		return errors.Errorf("spread entry has %d fields, expected 3", len(raw))
	}

	if err := json.Unmarshal(raw[0], &e.Time); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.Bid); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &e.Ask)
}

type SpreadResponse struct {
	Pair    string
	Entries []SpreadEntry
	Last    int64
}

// GetSpread returns recent bid/ask spread samples for the pair.
func (s *MarketDataService) GetSpread(ctx context.Context, pair string, since int64) (*SpreadResponse, error) {
	params := url.Values{}
	params.Set("pair", pair)
	if since > 0 {
		params.Set("since", strconv.FormatInt(since, 10))
	}

	var raw map[string]json.RawMessage
	if err := s.client.queryPublic(ctx, "Spread", params, &raw); err != nil {
		return nil, err
	}

	response := SpreadResponse{Pair: pair}
	if err := decodeKeyedResult(raw, pair, &response.Entries, &response.Last); err != nil {
		return nil, err
	}

	return &response, nil
}

// decodeKeyedResult splits the common market data result shape
// { "<pair>": [...], "last": ... } into its pair payload and cursor. The
// exchange keys the payload by its canonical pair name, which may differ from
// the requested alias, so any key other than "last" is accepted as the pair.
func decodeKeyedResult(raw map[string]json.RawMessage, pair string, entries interface{}, last interface{}) error {
	if lastRaw, ok := raw["last"]; ok && last != nil {
		if err := json.Unmarshal(lastRaw, last); err != nil {
			return errors.Wrap(err, "failed to decode last cursor")
		}
	}

	if entriesRaw, ok := raw[pair]; ok {
		return json.Unmarshal(entriesRaw, entries)
	}

	for key, entriesRaw := range raw {
		if key == "last" {
			continue
		}
		return json.Unmarshal(entriesRaw, entries)
	}

	return errors.Errorf("pair %s not found in response", pair)
}
