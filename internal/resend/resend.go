package resend

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
	inErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/log"
)

const defaultBaseURL = "https://api.resend.com"

// Client sends transactional email and manages the newsletter audience
// through the Resend API.
type Client struct {
	apiKey     string
	audienceID string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Resend) (*Client, error) {
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("resend api_key is not configured")
	}
	return &Client{
		apiKey:     cfg.ApiKey,
		audienceID: cfg.AudienceId,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}, nil
}

// WithBaseURL points the client at a fake Resend server, for tests.
func (cl *Client) WithBaseURL(baseURL string) *Client {
	clone := *cl
	clone.baseURL = baseURL
	clone.httpClient = &http.Client{Timeout: 30 * time.Second}
	return &clone
}

type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// SendEmail delivers one email. Callers treating delivery as best-effort
// are expected to log and swallow the returned error themselves.
func (cl *Client) SendEmail(c context.Context, email Email) error {
	return cl.do(c, "/emails", email)
}

// AddAudienceContact subscribes an email address to the configured
// newsletter audience. An already-subscribed address is not an error.
func (cl *Client) AddAudienceContact(c context.Context, email string, firstName string) error {
	if cl.audienceID == "" {
		return inErrors.ErrAudienceUnset
	}
	payload := struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
	}{Email: email, FirstName: firstName}

	err := cl.do(c, "/audiences/"+cl.audienceID+"/contacts", payload)
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

func (cl *Client) do(c context.Context, path string, in interface{}) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ResendClient do").
		Logger()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed encoding resend request with error=%w", err)
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.baseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed creating resend request with error=%w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cl.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling resend with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		message := resp.Status
		apiErr := struct {
			Message string `json:"message"`
		}{}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		err = fmt.Errorf("resend api error (%d): %s", resp.StatusCode, message)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}
