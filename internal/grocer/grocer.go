package grocer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contextchef/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Location is a geographic point with a display address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// Store is one grocery store known to the price service.
type Store struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

// Sale is a time-windowed discount at one store. Only sales where
// validFrom <= now <= validTo apply; the window is checked at optimization
// time, never cached as a boolean.
type Sale struct {
	StoreID   string    `json:"store_id"`
	ItemName  string    `json:"item_name"`
	Price     float64   `json:"price"`
	Unit      string    `json:"unit"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
}

// StorePrice is the regular shelf price of one item at one store.
type StorePrice struct {
	StoreID  string  `json:"store_id"`
	ItemName string  `json:"item_name"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	OnSale   bool    `json:"on_sale"`
}

type storesResponse struct {
	Stores []Store `json:"stores"`
}

type salesResponse struct {
	Sales []Sale `json:"sales"`
}

type pricesResponse struct {
	Prices []StorePrice `json:"prices"`
}

// Client is the interface to the external store/price/sales service.
type Client interface {
	FetchStores() ([]Store, error)
	FetchSales() ([]Sale, error)
	FetchPrices() ([]StorePrice, error)
	ReportPrices(prices []StorePrice) error
}

// grocerClient is the concrete HTTP implementation. Read endpoints use the
// content key as a query parameter; write endpoints sign a short-lived admin
// token.
type grocerClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NewClient creates a new grocer service client.
func NewClient(cfg *config.Config) Client {
	return &grocerClient{
		httpClient: &http.Client{},
		config:     cfg,
	}
}

// FetchStores fetches all stores from the content API.
func (c *grocerClient) FetchStores() ([]Store, error) {
	var response storesResponse
	if err := c.get("stores", &response); err != nil {
		return nil, err
	}
	return response.Stores, nil
}

// FetchSales fetches all current and upcoming sales from the content API.
func (c *grocerClient) FetchSales() ([]Sale, error) {
	var response salesResponse
	if err := c.get("sales", &response); err != nil {
		return nil, err
	}
	return response.Sales, nil
}

// FetchPrices fetches the regular price list from the content API.
func (c *grocerClient) FetchPrices() ([]StorePrice, error) {
	var response pricesResponse
	if err := c.get("prices", &response); err != nil {
		return nil, err
	}
	return response.Prices, nil
}

func (c *grocerClient) get(resource string, out any) error {
	url := fmt.Sprintf("%s/api/v1/content/%s/?key=%s", c.config.GrocerURL, resource, c.config.GrocerContentKey)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content api error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ReportPrices submits observed prices back to the service using the
// admin API, e.g. after applying a shopping receipt.
func (c *grocerClient) ReportPrices(prices []StorePrice) error {
	token, err := c.createAdminToken()
	if err != nil {
		return fmt.Errorf("failed to create admin token: %w", err)
	}

	body, err := json.Marshal(pricesResponse{Prices: prices})
	if err != nil {
		return fmt.Errorf("failed to marshal prices: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/admin/prices/", c.config.GrocerURL)
	req, err := http.NewRequest("POST", url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Grocer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var errResp any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("admin api error: status %d, body: %v", resp.StatusCode, errResp)
	}
	return nil
}

// createAdminToken generates a short-lived JWT for the admin API. The admin
// key has the form id:secret with a hex-encoded secret.
func (c *grocerClient) createAdminToken() (string, error) {
	keyParts := strings.Split(c.config.GrocerAdminKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	id := keyParts[0]
	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"aud": "/v1/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}

// PriceTable flattens store prices into the lower-cased name to price lookup
// the scoring pipeline consumes, keeping the cheapest entry per name.
func PriceTable(prices []StorePrice) map[string]float64 {
	table := make(map[string]float64, len(prices))
	for _, p := range prices {
		key := strings.ToLower(strings.TrimSpace(p.ItemName))
		if existing, ok := table[key]; !ok || p.Price < existing {
			table[key] = p.Price
		}
	}
	return table
}
