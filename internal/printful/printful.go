package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ofblood/website/internal/config"
	"github.com/ofblood/website/internal/log"
)

const (
	defaultBaseURL  = "https://api.printful.com"
	maxResponseSize = 10 * 1024 * 1024
)

// Client talks to the Printful fulfillment REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Printful) (*Client, error) {
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("printful api_key is not configured")
	}
	return &Client{
		apiKey:  cfg.ApiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}, nil
}

// WithBaseURL points the client at a fake Printful server, for tests.
func (cl *Client) WithBaseURL(baseURL string) *Client {
	clone := *cl
	clone.baseURL = baseURL
	clone.httpClient = &http.Client{Timeout: 30 * time.Second}
	return &clone
}

type Address struct {
	Name        string `json:"name"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	StateName   string `json:"state_name,omitempty"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

type Item struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type RetailCosts struct {
	Currency string `json:"currency"`
	Subtotal string `json:"subtotal,omitempty"`
	Discount string `json:"discount,omitempty"`
	Shipping string `json:"shipping,omitempty"`
	Tax      string `json:"tax,omitempty"`
}

type CreateOrderRequest struct {
	ExternalID  string       `json:"external_id"`
	Recipient   Address      `json:"recipient"`
	Items       []Item       `json:"items"`
	RetailCosts *RetailCosts `json:"retail_costs,omitempty"`
	Confirm     bool         `json:"confirm"`
}

type OrderItem struct {
	ID        int64  `json:"id"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type Order struct {
	ID         int64       `json:"id"`
	ExternalID string      `json:"external_id"`
	Status     string      `json:"status"`
	Recipient  Address     `json:"recipient"`
	Items      []OrderItem `json:"items"`
}

type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateOrder submits a fulfillment order. Confirm should be set so the
// order starts production immediately after payment.
func (cl *Client) CreateOrder(c context.Context, order CreateOrderRequest) (*Order, error) {
	created := Order{}
	if err := cl.do(c, http.MethodPost, "/orders", order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Order looks an order up by its external (commerce) id. A missing order
// yields (nil, nil).
func (cl *Client) Order(c context.Context, externalID string) (*Order, error) {
	found := Order{}
	err := cl.do(c, http.MethodGet, "/orders/@"+externalID, nil, &found)
	if err != nil {
		if notFound, ok := err.(*apiError); ok && notFound.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("printful api error (%d): %s", e.StatusCode, e.Message)
}

func (cl *Client) do(
	c context.Context,
	method string,
	path string,
	in interface{},
	out interface{},
) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PrintfulClient do").
		Logger()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed encoding printful request with error=%w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, cl.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed creating printful request with error=%w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cl.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling printful with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed reading printful response with error=%w", err)
	}

	env := envelope{}
	if unmarshalErr := json.Unmarshal(raw, &env); unmarshalErr != nil && resp.StatusCode < 300 {
		return fmt.Errorf("failed decoding printful response with error=%w", unmarshalErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := resp.Status
		if env.Error != nil && env.Error.Message != "" {
			message = env.Error.Message
		} else if len(env.Result) > 0 {
			// on errors Printful puts the message in result as a string
			var resultMessage string
			if json.Unmarshal(env.Result, &resultMessage) == nil && resultMessage != "" {
				message = resultMessage
			}
		}
		err = &apiError{StatusCode: resp.StatusCode, Message: message}
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed decoding printful result with error=%w", err)
	}
	return nil
}
