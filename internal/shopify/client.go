package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ofblood/website/internal/config"
	"github.com/ofblood/website/internal/log"
)

const (
	apiVersion = "2024-01"
	// maxResponseSize caps vendor response bodies to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024
)

// Client issues Storefront GraphQL calls against one Shopify store.
type Client struct {
	domain     string
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Shopify) (*Client, error) {
	if cfg.StoreDomain == "" {
		return nil, fmt.Errorf("shopify store_domain is not configured")
	}
	if cfg.StorefrontToken == "" {
		return nil, fmt.Errorf("shopify storefront_token is not configured")
	}
	return &Client{
		domain: cfg.StoreDomain,
		token:  cfg.StorefrontToken,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}, nil
}

func (cl *Client) endpoint() string {
	if cl.baseURL != "" {
		return cl.baseURL
	}
	return fmt.Sprintf("https://%s/api/%s/graphql.json", cl.domain, apiVersion)
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// do posts one GraphQL document and decodes the data payload into out.
func (cl *Client) do(
	c context.Context,
	query string,
	variables map[string]interface{},
	out interface{},
) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShopifyClient do").
		Logger()

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed encoding graphql request with error=%w", err)
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.endpoint(),
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed creating graphql request with error=%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", cl.token)

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling shopify with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed reading shopify response with error=%w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf(
			"shopify api error (%d): %s",
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	envelope := graphqlEnvelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed decoding shopify response with error=%w", err)
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, graphqlErr := range envelope.Errors {
			messages = append(messages, graphqlErr.Message)
		}
		err = fmt.Errorf("shopify graphql error: %s", strings.Join(messages, ", "))
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed decoding shopify data with error=%w", err)
	}
	return nil
}

// WithBaseURL overrides the computed endpoint, for tests against a fake
// storefront server.
func (cl *Client) WithBaseURL(baseURL string) *Client {
	clone := *cl
	clone.httpClient = &http.Client{Timeout: 30 * time.Second}
	clone.domain = ""
	clone.baseURL = baseURL
	return &clone
}
