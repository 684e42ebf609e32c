// Package httpbridge implements a cinevault.RegistryBridge over HTTP against
// the external rights-registry service. Requests carry a generated
// idempotency key so the registry can deduplicate retried announcements and
// mints.
package httpbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
)

const defaultTimeout = 15 * time.Second

// Bridge is an HTTP client for the external rights registry.
type Bridge struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option configures the bridge.
type Option func(*Bridge)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Bridge) {
		b.client = client
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(b *Bridge) {
		b.apiKey = key
	}
}

// New creates a bridge targeting the registry at baseURL.
func New(baseURL string, opts ...Option) *Bridge {
	b := &Bridge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type registerPayload struct {
	ContentID   int64  `json:"content_id"`
	Creator     string `json:"creator"`
	MetadataURI string `json:"metadata_uri"`
}

type mintPayload struct {
	ContentID              int64  `json:"content_id"`
	RegistryItemID         string `json:"registry_item_id"`
	RegistryLicenseTermsID string `json:"registry_license_terms_id"`
	Renter                 string `json:"renter"`
	Amount                 int64  `json:"amount"`
	PaymentToken           string `json:"payment_token"`
}

type mintResponse struct {
	LicenseTokenID string `json:"license_token_id"`
}

func (b *Bridge) Register(ctx context.Context, req cinevault.RegisterRequest) error {
	payload := registerPayload{
		ContentID:   req.ContentID,
		Creator:     req.Creator,
		MetadataURI: req.MetadataURI,
	}
	return b.post(ctx, "/registrations", payload, nil)
}

func (b *Bridge) MintLicense(ctx context.Context, req cinevault.MintLicenseRequest) (string, error) {
	payload := mintPayload{
		ContentID:              req.ContentID,
		RegistryItemID:         req.RegistryItemID,
		RegistryLicenseTermsID: req.RegistryLicenseTermsID,
		Renter:                 req.Renter,
		Amount:                 req.Amount,
		PaymentToken:           req.PaymentToken,
	}
	var resp mintResponse
	if err := b.post(ctx, "/licenses", payload, &resp); err != nil {
		return "", err
	}
	if resp.LicenseTokenID == "" {
		return "", fmt.Errorf("%w: registry returned no license token id", cinevault.ErrRegistryUnavailable)
	}
	return resp.LicenseTokenID, nil
}

func (b *Bridge) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", cinevault.ErrRegistryUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", cinevault.ErrRegistryUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", cinevault.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", cinevault.ErrRegistryUnavailable, path, resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", cinevault.ErrRegistryUnavailable, err)
		}
	}
	return nil
}
