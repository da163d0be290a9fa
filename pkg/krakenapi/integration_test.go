package krakenapi

import (
	"context"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func maskSecret(s string) string {
	re := regexp.MustCompile(`\b(\w{4})\w+\b`)
	s = re.ReplaceAllString(s, "$1******")
	return s
}

func integrationTestConfigured(t *testing.T) (key, secret string, ok bool) {
	var hasKey, hasSecret bool
	key, hasKey = os.LookupEnv("KRAKEN_API_KEY")
	secret, hasSecret = os.LookupEnv("KRAKEN_API_SECRET")
	ok = hasKey && hasSecret && os.Getenv("TEST_KRAKEN") == "1"
	if ok {
		t.Logf("kraken api integration test enabled, key = %s, secret = %s", maskSecret(key), maskSecret(secret))
	}
	return key, secret, ok
}

func TestPublicIntegration(t *testing.T) {
	if os.Getenv("TEST_KRAKEN") != "1" {
		t.SkipNow()
	}

	ctx := context.Background()
	client := NewClient()

	t.Run("Time", func(t *testing.T) {
		serverTime, err := client.MarketDataService.GetTime(ctx)
		assert.NoError(t, err)
		assert.NotZero(t, serverTime.UnixTime)
	})

	t.Run("Ticker", func(t *testing.T) {
		tickers, err := client.MarketDataService.GetTicker(ctx, "XXBTZUSD")
		assert.NoError(t, err)
		assert.NotEmpty(t, tickers)
	})

	t.Run("Depth", func(t *testing.T) {
		book, err := client.MarketDataService.GetDepth(ctx, "XXBTZUSD", 5)
		assert.NoError(t, err)
		assert.NotEmpty(t, book.Asks)
		assert.NotEmpty(t, book.Bids)
	})
}

func TestPrivateIntegration(t *testing.T) {
	key, secret, ok := integrationTestConfigured(t)
	if !ok {
		t.SkipNow()
	}

	ctx := context.Background()
	client := NewClient().Auth(key, secret)

	t.Run("Balance", func(t *testing.T) {
		balances, err := client.AccountService.GetBalance(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, balances)
	})

	t.Run("OpenOrders", func(t *testing.T) {
		orders, err := client.TradeService.GetOpenOrders(ctx)
		assert.NoError(t, err)
		_ = orders
	})
}
