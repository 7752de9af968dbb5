package pinning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"token-forge/internal/domain"
)

// MetadataPolicy decides what happens when no gateway can serve the metadata document.
type MetadataPolicy string

const (
	// AcceptUnvalidated proceeds and reports the document as unvalidated.
	AcceptUnvalidated MetadataPolicy = "accept-unvalidated"
	// Strict fails the metadata step.
	Strict MetadataPolicy = "strict"
)

// ParseMetadataPolicy returns the policy for s. Empty means AcceptUnvalidated.
func ParseMetadataPolicy(s string) (MetadataPolicy, error) {
	switch MetadataPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AcceptUnvalidated:
		return AcceptUnvalidated, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("unknown metadata policy %q", s)
	}
}

// AlternateGateways are tried in order for IPFS URLs.
var AlternateGateways = []string{
	"https://ipfs.io",
	"https://cloudflare-ipfs.com",
	"https://gateway.pinata.cloud",
}

var (
	ErrImageUnreachable  = errors.New("pinned image is not reachable")
	ErrNotAnImage        = errors.New("pinned file is not an image")
	ErrMetadataNotServed = errors.New("metadata document could not be validated on any gateway")
)

// Validator checks pinned content through HTTP gateways.
type Validator struct {
	client   *http.Client
	policy   MetadataPolicy
	gateways []string
	logger   *zap.Logger
}

// ValidatorOption configures Validator.
type ValidatorOption func(*Validator)

// WithPolicy sets the metadata policy.
func WithPolicy(p MetadataPolicy) ValidatorOption {
	return func(v *Validator) {
		v.policy = p
	}
}

// WithGateways replaces the alternate gateway list.
func WithGateways(gateways ...string) ValidatorOption {
	return func(v *Validator) {
		v.gateways = gateways
	}
}

// WithValidatorHTTPClient sets custom http.Client.
func WithValidatorHTTPClient(hc *http.Client) ValidatorOption {
	return func(v *Validator) {
		v.client = hc
	}
}

// WithValidatorLogger sets the logger.
func WithValidatorLogger(l *zap.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = l
	}
}

// NewValidator creates a validator with the AcceptUnvalidated policy.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		client:   &http.Client{Timeout: DefaultTimeout},
		policy:   AcceptUnvalidated,
		gateways: AlternateGateways,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Policy returns the configured metadata policy.
func (v *Validator) Policy() MetadataPolicy { return v.policy }

// ValidateImage issues a HEAD request and requires a 2xx image/* response.
func (v *Validator) ValidateImage(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrImageUnreachable, resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: content-type %q", ErrNotAnImage, ct)
	}
	v.logger.Debug("image validated", zap.String("url", url), zap.String("content_type", ct))
	return nil
}

// ValidateMetadata fetches the document and requires string name and symbol fields.
// IPFS URLs are also tried on each alternate gateway. When nothing validates, the
// policy decides between ValidationUnvalidated and ErrMetadataNotServed.
func (v *Validator) ValidateMetadata(ctx context.Context, url string) (domain.ValidationOutcome, error) {
	var lastErr error
	for _, candidate := range v.candidates(url) {
		if err := v.fetchMetadata(ctx, candidate); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			v.logger.Debug("metadata gateway failed", zap.String("url", candidate), zap.Error(err))
			lastErr = err
			continue
		}
		return domain.ValidationValid, nil
	}

	if v.policy == Strict {
		return "", fmt.Errorf("%w: %v", ErrMetadataNotServed, lastErr)
	}
	v.logger.Warn("metadata could not be validated, proceeding", zap.String("url", url), zap.Error(lastErr))
	return domain.ValidationUnvalidated, nil
}

// candidates returns url followed by the same CID on every alternate gateway.
func (v *Validator) candidates(url string) []string {
	out := []string{url}
	i := strings.Index(url, "/ipfs/")
	if i < 0 {
		return out
	}
	cid := url[i+len("/ipfs/"):]
	for _, gw := range v.gateways {
		alt := GatewayURL(gw, cid)
		if alt != url {
			out = append(out, alt)
		}
	}
	return out
}

func (v *Validator) fetchMetadata(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if _, ok := doc["name"].(string); !ok {
		return fmt.Errorf("name is missing or not a string")
	}
	if _, ok := doc["symbol"].(string); !ok {
		return fmt.Errorf("symbol is missing or not a string")
	}
	return nil
}
