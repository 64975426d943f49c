// Package backend implements the HTTP client for the delivery backend that
// owns link generation, recipient uploads, authoritative previews and the
// actual batch send.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Centro-Juridico-Internacional/campanero/internal/campaign"
	"github.com/Centro-Juridico-Internacional/campanero/internal/catalog"
	"github.com/Centro-Juridico-Internacional/campanero/internal/template"
)

// RecipientKind selects which recipient list an upload replaces.
type RecipientKind string

const (
	KindNumeros RecipientKind = "numeros"
	KindCorreos RecipientKind = "correos"
)

// Upload is the backend's acknowledgement of a recipient file upload.
type Upload struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
}

// Observer is called after every backend request with the operation name,
// its duration and outcome. Used to feed metrics.
type Observer func(op string, d time.Duration, err error)

// Client talks to the delivery backend. It implements catalog.Fetcher,
// campaign.LinkGenerator, campaign.Previewer and campaign.Sender.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observe    Observer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithObserver installs a per-request observer hook.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// request performs one JSON request against the backend and unwraps the
// response envelope into result.
func (c *Client) request(ctx context.Context, op, method, path string, body any, result any) error {
	start := time.Now()
	err := c.do(ctx, method, path, body, result)
	if c.observe != nil {
		c.observe(op, time.Since(start), err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, result)
}

// decodeEnvelope unwraps the {success, data, error} envelope. A transport
// level failure without a decodable body falls back to the HTTP status.
func decodeEnvelope(resp *http.Response, result any) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("backend HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		if env.Error == "" {
			return fmt.Errorf("backend HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("backend: %s", env.Error)
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.request(ctx, "health", http.MethodGet, "/api/health", nil, nil)
}

// FetchCatalog retrieves the CHECK catalog.
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Check, error) {
	var checks []catalog.Check
	if err := c.request(ctx, "checks", http.MethodGet, "/api/checks", nil, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

// GenerateLink asks the backend to mint a join link for a class session.
func (c *Client) GenerateLink(ctx context.Context, check, clase, grupo int) (string, error) {
	req := map[string]int{
		"check": check,
		"clase": clase,
		"grupo": grupo,
	}
	var data struct {
		Link string `json:"link"`
	}
	if err := c.request(ctx, "generate_link", http.MethodPost, "/api/generate-link", req, &data); err != nil {
		return "", err
	}
	return data.Link, nil
}

// UploadRecipients streams one recipient Excel to the backend, tagged with
// the list kind and the slot it belongs to.
func (c *Client) UploadRecipients(ctx context.Context, kind RecipientKind, slot int, filename string, file io.Reader) (*Upload, error) {
	start := time.Now()
	upload, err := c.uploadRecipients(ctx, kind, slot, filename, file)
	if c.observe != nil {
		c.observe("upload_excel", time.Since(start), err)
	}
	return upload, err
}

func (c *Client) uploadRecipients(ctx context.Context, kind RecipientKind, slot int, filename string, file io.Reader) (*Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.WriteField("tipo", string(kind)); err != nil {
		return nil, fmt.Errorf("write tipo: %w", err)
	}
	if err := mw.WriteField("mensaje_id", fmt.Sprintf("%d", slot)); err != nil {
		return nil, fmt.Errorf("write mensaje_id: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-excel", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var upload Upload
	if err := decodeEnvelope(resp, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// PreviewCampaign renders the full batch remotely, one preview per message.
func (c *Client) PreviewCampaign(ctx context.Context, mensajes []campaign.OutboundMessage) ([]template.Preview, error) {
	req := map[string]any{"mensajes": mensajes}
	var data struct {
		Previews []template.Preview `json:"previews"`
	}
	if err := c.request(ctx, "preview_campaign", http.MethodPost, "/api/preview-campaign", req, &data); err != nil {
		return nil, err
	}
	return data.Previews, nil
}

// SendCampaign submits the batch for delivery.
func (c *Client) SendCampaign(ctx context.Context, mensajes []campaign.OutboundMessage, asunto string) (*campaign.SendResult, error) {
	req := map[string]any{
		"mensajes":      mensajes,
		"asunto_correo": asunto,
	}
	var result campaign.SendResult
	if err := c.request(ctx, "send_campaign", http.MethodPost, "/api/send-campaign", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
