package asset

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kislikjeka/fintrack/pkg/config"
)

// cryptoListings maps ticker symbols to CoinGecko ids. Symbols missing here are
// looked up by their lowercase ticker.
var cryptoListings = []Listing{
	{Symbol: "BTC", Name: "Bitcoin", Type: Crypto, CoinGeckoID: "bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", Type: Crypto, CoinGeckoID: "ethereum"},
	{Symbol: "ADA", Name: "Cardano", Type: Crypto, CoinGeckoID: "cardano"},
	{Symbol: "DOT", Name: "Polkadot", Type: Crypto, CoinGeckoID: "polkadot"},
	{Symbol: "SOL", Name: "Solana", Type: Crypto, CoinGeckoID: "solana"},
	{Symbol: "MATIC", Name: "Polygon", Type: Crypto, CoinGeckoID: "matic-network"},
	{Symbol: "LINK", Name: "Chainlink", Type: Crypto, CoinGeckoID: "chainlink"},
	{Symbol: "UNI", Name: "Uniswap", Type: Crypto, CoinGeckoID: "uniswap"},
	{Symbol: "AVAX", Name: "Avalanche", Type: Crypto, CoinGeckoID: "avalanche-2"},
	{Symbol: "ATOM", Name: "Cosmos", Type: Crypto, CoinGeckoID: "cosmos"},
	{Symbol: "XRP", Name: "XRP", Type: Crypto, CoinGeckoID: "ripple"},
	{Symbol: "LTC", Name: "Litecoin", Type: Crypto, CoinGeckoID: "litecoin"},
	{Symbol: "BCH", Name: "Bitcoin Cash", Type: Crypto, CoinGeckoID: "bitcoin-cash"},
	{Symbol: "EOS", Name: "EOS", Type: Crypto, CoinGeckoID: "eos"},
	{Symbol: "TRX", Name: "TRON", Type: Crypto, CoinGeckoID: "tron"},
	{Symbol: "XLM", Name: "Stellar", Type: Crypto, CoinGeckoID: "stellar"},
	{Symbol: "DOGE", Name: "Dogecoin", Type: Crypto, CoinGeckoID: "dogecoin"},
	{Symbol: "USDT", Name: "Tether", Type: Crypto, CoinGeckoID: "tether"},
	{Symbol: "USDC", Name: "USD Coin", Type: Crypto, CoinGeckoID: "usd-coin"},
}

var stockListings = []Listing{
	{Symbol: "AAPL", Name: "Apple Inc.", Type: Stock},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Type: Stock},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Type: Stock},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Type: Stock},
	{Symbol: "TSLA", Name: "Tesla Inc.", Type: Stock},
	{Symbol: "META", Name: "Meta Platforms Inc.", Type: Stock},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Type: Stock},
	{Symbol: "NFLX", Name: "Netflix Inc.", Type: Stock},
	{Symbol: "DIS", Name: "The Walt Disney Company", Type: Stock},
	{Symbol: "V", Name: "Visa Inc.", Type: Stock},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Type: Stock},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Type: Stock},
	{Symbol: "WMT", Name: "Walmart Inc.", Type: Stock},
	{Symbol: "PG", Name: "Procter & Gamble Co.", Type: Stock},
	{Symbol: "UNH", Name: "UnitedHealth Group Inc.", Type: Stock},
	{Symbol: "HD", Name: "The Home Depot Inc.", Type: Stock},
}

// mu guards the listings and bySymbol once Extend has run
var mu sync.RWMutex

var bySymbol = func() map[string]Listing {
	m := make(map[string]Listing, len(cryptoListings)+len(stockListings))
	for _, l := range stockListings {
		m[l.Symbol] = l
	}
	for _, l := range cryptoListings {
		m[l.Symbol] = l
	}
	return m
}()

// stockSymbolMaxLen is the cut-off of the last-resort type heuristic
const stockSymbolMaxLen = 4

// Lookup returns the catalog listing for a symbol
func Lookup(symbol string) (Listing, bool) {
	mu.RLock()
	defer mu.RUnlock()
	l, ok := bySymbol[NormalizeSymbol(symbol)]
	return l, ok
}

// CoinGeckoID returns the provider id for a crypto symbol. Unknown symbols fall
// back to the lowercase ticker so the provider can still answer for them.
func CoinGeckoID(symbol string) string {
	if l, ok := Lookup(symbol); ok && l.CoinGeckoID != "" {
		return l.CoinGeckoID
	}
	return strings.ToLower(NormalizeSymbol(symbol))
}

// InferType guesses the asset class of a symbol: catalog first, then symbol
// length (up to four characters reads as a stock ticker). The length rule is
// a heuristic and misclassifies e.g. short crypto tickers that are not listed.
func InferType(symbol string) Type {
	s := NormalizeSymbol(symbol)
	if l, ok := Lookup(s); ok {
		return l.Type
	}
	if len(s) <= stockSymbolMaxLen {
		return Stock
	}
	return Crypto
}

// Search matches query against listing symbols and names, optionally filtered by type.
// Results are ordered: exact symbol match, symbol prefix, then name matches.
func Search(query string, only *Type, limit int) ([]Listing, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	var pool []Listing
	mu.RLock()
	if only == nil || *only == Crypto {
		pool = append(pool, cryptoListings...)
	}
	if only == nil || *only == Stock {
		pool = append(pool, stockListings...)
	}
	mu.RUnlock()

	type ranked struct {
		listing Listing
		rank    int
	}
	var hits []ranked
	for _, l := range pool {
		switch {
		case l.Symbol == q:
			hits = append(hits, ranked{l, 0})
		case strings.HasPrefix(l.Symbol, q):
			hits = append(hits, ranked{l, 1})
		case strings.Contains(l.Symbol, q), strings.Contains(strings.ToUpper(l.Name), q):
			hits = append(hits, ranked{l, 2})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Listing, len(hits))
	for i, h := range hits {
		out[i] = h.listing
	}
	return out, nil
}

// Extend adds listings to the catalog. A listing whose symbol is already known
// replaces the existing one, including its type.
func Extend(listings []Listing) error {
	for _, l := range listings {
		if NormalizeSymbol(l.Symbol) == "" || !l.Type.Valid() {
			return fmt.Errorf("%w: invalid listing %q", ErrUnsupportedAssetType, l.Symbol)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, l := range listings {
		l.Symbol = NormalizeSymbol(l.Symbol)
		if l.Type == Stock {
			l.CoinGeckoID = ""
		}
		if _, ok := bySymbol[l.Symbol]; ok {
			cryptoListings = without(cryptoListings, l.Symbol)
			stockListings = without(stockListings, l.Symbol)
		}
		if l.Type == Crypto {
			cryptoListings = append(cryptoListings, l)
		} else {
			stockListings = append(stockListings, l)
		}
		bySymbol[l.Symbol] = l
	}
	return nil
}

func without(listings []Listing, symbol string) []Listing {
	out := listings[:0:0]
	for _, l := range listings {
		if l.Symbol != symbol {
			out = append(out, l)
		}
	}
	return out
}

// LoadCatalogFile extends the catalog with the listings of an assets YAML file
// and returns how many were added
func LoadCatalogFile(path string) (int, error) {
	cfg, err := config.LoadAssetsConfig(path)
	if err != nil {
		return 0, err
	}
	listings := make([]Listing, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		t, err := ParseType(a.Type)
		if err != nil {
			return 0, fmt.Errorf("asset %s: %w", a.Symbol, err)
		}
		listings = append(listings, Listing{Symbol: a.Symbol, Name: a.Name, Type: t, CoinGeckoID: a.CoinGeckoID})
	}
	if err := Extend(listings); err != nil {
		return 0, err
	}
	return len(listings), nil
}
