package pesapal

//go:generate mockgen -source=pesapal.go -destination=mock_pesapal.go -package=pesapal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/config"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/clients"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tokenPath  = "/api/Auth/RequestToken"
	submitPath = "/api/Transactions/SubmitOrderRequest"
	statusPath = "/api/Transactions/GetTransactionStatus"

	// tokens are refreshed this long before the gateway says they expire
	tokenLeeway   = 30 * time.Second
	fallbackTTL   = 4 * time.Minute
	statusPaid    = 1
	statusFailed  = 2
	statusRevoked = 3
)

type PaymentRequest struct {
	MerchantReference string
	Amount            decimal.Decimal
	Description       string
	Email             string
	Phone             string
	FirstName         string
}

type PaymentSession struct {
	TrackingID        string `json:"order_tracking_id"`
	MerchantReference string `json:"merchant_reference"`
	RedirectURL       string `json:"redirect_url"`
}

type Gateway interface {
	Initialize(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
	Status(ctx context.Context, trackingID string) (domain.PaymentStatus, error)
}

type apiError struct {
	Type    string `json:"error_type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokenResponse struct {
	Token      string    `json:"token"`
	ExpiryDate string    `json:"expiryDate"`
	Error      *apiError `json:"error"`
}

type billingAddress struct {
	Email     string `json:"email_address,omitempty"`
	Phone     string `json:"phone_number,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type submitRequest struct {
	ID             string         `json:"id"`
	Currency       string         `json:"currency"`
	Amount         float64        `json:"amount"`
	Description    string         `json:"description"`
	CallbackURL    string         `json:"callback_url"`
	NotificationID string         `json:"notification_id"`
	BillingAddress billingAddress `json:"billing_address"`
}

type submitResponse struct {
	PaymentSession
	Error *apiError `json:"error"`
}

type statusResponse struct {
	StatusCode        int       `json:"status_code"`
	Description       string    `json:"payment_status_description"`
	MerchantReference string    `json:"merchant_reference"`
	Error             *apiError `json:"error"`
}

// Client talks to the PesaPal v3 REST API and keeps the bearer token until it expires.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	ipnID          string
	callbackURL    string
	currency       string
	client         clients.HTTPClientI
	now            func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		baseURL:        cfg.PesapalAddress,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		ipnID:          cfg.IPNID,
		callbackURL:    cfg.CallbackURL,
		currency:       cfg.Currency,
		client:         client,
		now:            time.Now,
	}
}

func jsonHeaders(token string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func gatewayError(op string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrGateway, op, fmt.Sprintf(format, args...))
}

func (e *apiError) String() string {
	return fmt.Sprintf("%s %s %s", e.Type, e.Code, e.Message)
}

// RequestToken returns a cached token or fetches a new one.
func (c *Client) RequestToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(tokenLeeway).Before(c.expires) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"consumer_key":    c.consumerKey,
		"consumer_secret": c.consumerSecret,
	})
	if err != nil {
		return "", err
	}
	var resp tokenResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+tokenPath, "", body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil || resp.Token == "" {
		return "", gatewayError("request token", "no token issued %v", resp.Error)
	}

	expires, err := time.Parse(time.RFC3339Nano, resp.ExpiryDate)
	if err != nil {
		expires = c.now().Add(fallbackTTL)
	}
	c.token, c.expires = resp.Token, expires
	return c.token, nil
}

// Initialize registers the order with PesaPal and returns where to send the payer.
func (c *Client) Initialize(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	token, err := c.RequestToken(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(submitRequest{
		ID:             req.MerchantReference,
		Currency:       c.currency,
		Amount:         req.Amount.InexactFloat64(),
		Description:    req.Description,
		CallbackURL:    c.callbackURL,
		NotificationID: c.ipnID,
		BillingAddress: billingAddress{Email: req.Email, Phone: req.Phone, FirstName: req.FirstName},
	})
	if err != nil {
		return nil, err
	}

	var resp submitResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+submitPath, token, body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, gatewayError("submit order", "%s", resp.Error)
	}
	if resp.TrackingID == "" || resp.RedirectURL == "" {
		return nil, gatewayError("submit order", "incomplete payment session")
	}
	zap.L().Info("payment session opened",
		zap.String("merchant_reference", req.MerchantReference),
		zap.String("tracking_id", resp.TrackingID),
	)
	return &resp.PaymentSession, nil
}

// Status maps the gateway status code: 1 completed, 2 failed, 3 reversed, anything else pending.
func (c *Client) Status(ctx context.Context, trackingID string) (domain.PaymentStatus, error) {
	token, err := c.RequestToken(ctx)
	if err != nil {
		return "", err
	}
	u := c.baseURL + statusPath + "?orderTrackingId=" + url.QueryEscape(trackingID)

	var resp statusResponse
	if err := c.call(ctx, http.MethodGet, u, token, nil, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil && resp.Error.Code != "" {
		return "", gatewayError("transaction status", "%s", resp.Error)
	}

	switch resp.StatusCode {
	case statusPaid:
		return domain.PaymentCompleted, nil
	case statusFailed:
		return domain.PaymentFailed, nil
	case statusRevoked:
		return domain.PaymentCancelled, nil
	default:
		return domain.PaymentPending, nil
	}
}

func (c *Client) call(ctx context.Context, method, u, token string, body []byte, out any) error {
	var (
		statusCode int
		respBody   []byte
		err        error
	)
	switch method {
	case http.MethodGet:
		statusCode, respBody, err = c.client.Get(ctx, u, jsonHeaders(token))
	default:
		statusCode, respBody, err = c.client.Post(ctx, u, jsonHeaders(token), body)
	}
	if err != nil {
		zap.L().Error("pesapal request failed", zap.String("url", u), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		zap.L().Error("unexpected pesapal status", zap.String("url", u), zap.Int("status", statusCode))
		return gatewayError(method+" "+u, "unexpected status code %d", statusCode)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return gatewayError(method+" "+u, "malformed body: %v", err)
	}
	return nil
}
