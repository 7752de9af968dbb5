// Package pinning uploads token images and metadata documents to Pinata and
// checks that the pinned content is reachable through an IPFS gateway.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Default endpoints.
const (
	DefaultAPIURL  = "https://api.pinata.cloud/pinning"
	DefaultGateway = "https://gateway.pinata.cloud"
	DefaultTimeout = 60 * time.Second
)

// Pinner stores content on IPFS and returns its CID.
type Pinner interface {
	PinFile(ctx context.Context, name, contentType string, data []byte) (string, error)
	PinJSON(ctx context.Context, name string, v interface{}) (string, error)
	GatewayURL(cid string) string
}

// Credentials authenticate against the Pinata API. JWT wins when set.
type Credentials struct {
	APIKey    string
	SecretKey string
	JWT       string
}

func (c Credentials) empty() bool {
	return c.JWT == "" && (c.APIKey == "" || c.SecretKey == "")
}

// APIError is a non-2xx response from the pinning API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pinata: status %d: %s", e.Status, e.Body)
}

// Client is a Pinata pinning client.
type Client struct {
	apiURL  string
	gateway string
	creds   Credentials
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithAPIURL overrides the pinning API base URL.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithGateway sets the gateway used by GatewayURL.
func WithGateway(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.gateway = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Pinata client.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		apiURL:  DefaultAPIURL,
		gateway: DefaultGateway,
		creds:   creds,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type pinataOptions struct {
	CIDVersion int `json:"cidVersion"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinFile uploads data as a file named name and returns its CID.
func (c *Client) PinFile(ctx context.Context, name, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}

	meta, _ := json.Marshal(pinataMetadata{Name: name})
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("write metadata field: %w", err)
	}
	opts, _ := json.Marshal(pinataOptions{CIDVersion: 1})
	if err := w.WriteField("pinataOptions", string(opts)); err != nil {
		return "", fmt.Errorf("write options field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	return c.pin(ctx, "/pinFileToIPFS", w.FormDataContentType(), &body)
}

// PinJSON uploads v as a JSON document named name and returns its CID.
func (c *Client) PinJSON(ctx context.Context, name string, v interface{}) (string, error) {
	payload := struct {
		Content  interface{}    `json:"pinataContent"`
		Metadata pinataMetadata `json:"pinataMetadata"`
		Options  pinataOptions  `json:"pinataOptions"`
	}{
		Content:  v,
		Metadata: pinataMetadata{Name: name},
		Options:  pinataOptions{CIDVersion: 1},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal json payload: %w", err)
	}
	return c.pin(ctx, "/pinJSONToIPFS", "application/json", bytes.NewReader(body))
}

// GatewayURL returns the public URL of cid on the configured gateway.
func (c *Client) GatewayURL(cid string) string {
	return GatewayURL(c.gateway, cid)
}

// GatewayURL joins a gateway base and a CID.
func GatewayURL(gateway, cid string) string {
	return strings.TrimRight(gateway, "/") + "/ipfs/" + cid
}

func (c *Client) pin(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	if c.creds.empty() {
		return "", fmt.Errorf("pinata: no credentials configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.creds.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.JWT)
	} else {
		req.Header.Set("pinata_api_key", c.creds.APIKey)
		req.Header.Set("pinata_secret_api_key", c.creds.SecretKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out pinResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("pinata: response missing IpfsHash")
	}
	return out.IpfsHash, nil
}
