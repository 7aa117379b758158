package dexscreener

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Client represents a DexScreener API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new DexScreener API client
func NewClient() *Client {
	return &Client{
		baseURL: "https://api.dexscreener.com",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				IdleConnTimeout:       10 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// Pair represents a single trading pair from the DexScreener API
type Pair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"quoteToken"`
	PriceNative string `json:"priceNative"`
	PriceUsd    string `json:"priceUsd"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		Usd   float64 `json:"usd"`
		Base  float64 `json:"base"`
		Quote float64 `json:"quote"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	FDV float64 `json:"fdv"`
}

type tokenPairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// TokenPrice is the aggregated price view built from the most liquid pair
type TokenPrice struct {
	Address        string  `json:"address"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	PriceUsd       float64 `json:"price_usd"`
	PriceNative    float64 `json:"price_native"`
	PriceChange24h float64 `json:"price_change_24h"`
	LiquidityUsd   float64 `json:"liquidity_usd"`
	Volume24h      float64 `json:"volume_24h"`
	PairAddress    string  `json:"pair_address"`
	DexID          string  `json:"dex_id"`
}

// token price cache (in-memory)
type priceCacheEntry struct {
	price     TokenPrice
	updatedAt time.Time
}

const priceCacheTTL = 30 * time.Second

var (
	priceCache   = make(map[string]priceCacheEntry)
	priceCacheMu sync.RWMutex
)

// GetTokenPairs retrieves all pairs for a token address
func (c *Client) GetTokenPairs(tokenAddress string) ([]Pair, error) {
	fullURL := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, tokenAddress)

	resp, err := c.httpClient.Get(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	var result tokenPairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode JSON response: %w", err)
	}

	return result.Pairs, nil
}

// GetTokenPrice returns price data for a token based on its most liquid
// pair. Falls back to a recently cached price when the API is unreachable.
// Returns: price, useCached, error
func (c *Client) GetTokenPrice(tokenAddress string) (*TokenPrice, bool, error) {
	pairs, err := c.GetTokenPairs(tokenAddress)
	if err != nil || len(pairs) == 0 {
		priceCacheMu.RLock()
		entry, ok := priceCache[tokenAddress]
		priceCacheMu.RUnlock()
		if ok && time.Since(entry.updatedAt) < priceCacheTTL {
			return &entry.price, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to get token pairs and no cached price: %w", err)
		}
		return nil, false, fmt.Errorf("no pairs found for token %s", tokenAddress)
	}

	// Pick the pair with the highest USD liquidity
	best := pairs[0]
	for _, pair := range pairs[1:] {
		if pair.Liquidity.Usd > best.Liquidity.Usd {
			best = pair
		}
	}

	priceUsd, _ := strconv.ParseFloat(best.PriceUsd, 64)
	priceNative, _ := strconv.ParseFloat(best.PriceNative, 64)

	price := TokenPrice{
		Address:        tokenAddress,
		Symbol:         best.BaseToken.Symbol,
		Name:           best.BaseToken.Name,
		PriceUsd:       priceUsd,
		PriceNative:    priceNative,
		PriceChange24h: best.PriceChange.H24,
		LiquidityUsd:   best.Liquidity.Usd,
		Volume24h:      best.Volume.H24,
		PairAddress:    best.PairAddress,
		DexID:          best.DexID,
	}

	priceCacheMu.Lock()
	priceCache[tokenAddress] = priceCacheEntry{price: price, updatedAt: time.Now()}
	priceCacheMu.Unlock()

	return &price, false, nil
}
