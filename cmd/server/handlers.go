package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"token-forge/internal/apperr"
	"token-forge/internal/creator"
	"token-forge/internal/domain"
	"token-forge/internal/fees"
	"token-forge/internal/price"
	"token-forge/internal/storage"
)

// maxImageBytes bounds the multipart image upload.
const maxImageBytes = 5 << 20

type coinCreator interface {
	Create(ctx context.Context, params *domain.CoinCreationParams, observers ...creator.Notifier) *domain.CreationResult
	Quote(params *domain.CoinCreationParams) []fees.Line
}

type priceFeed interface {
	SOLPriceUSD(ctx context.Context) price.Quote
}

// Server serves the token form and the created coins list.
type Server struct {
	creator  coinCreator
	store    storage.CoinRecordStore
	price    priceFeed
	metrics  http.Handler
	logger   *zap.Logger
	explorer func(address string) string
	origins  []string

	// One signer: creation runs are serialized.
	mu sync.Mutex
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/coins", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{mint}", s.handleGet)
	})
	r.Post("/fee", s.handleFee)
	r.Get("/price", s.handlePrice)
	return r
}

// createResponse is the POST /coins body.
type createResponse struct {
	*domain.CreationResult
	ExplorerURL   string                 `json:"explorer_url,omitempty"`
	Notifications []creator.Notification `json:"notifications"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	params, err := parseForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.Wrap(apperr.KindValidation, "form", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &creator.Recorder{}
	res := s.creator.Create(r.Context(), params, rec)

	resp := createResponse{CreationResult: res, Notifications: rec.Notifications()}
	if res.MintAddress != "" && s.explorer != nil {
		resp.ExplorerURL = s.explorer(res.MintAddress)
	}
	status := http.StatusCreated
	if !res.Success {
		status = statusFor(res.Error.Kind)
	}
	s.logger.Info("create request",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("run_id", res.RunID),
		zap.Int("status", status))
	writeJSON(w, status, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, apperr.Wrap(apperr.KindInternal, "list", err))
		return
	}
	if records == nil {
		records = []*domain.CreatedCoinRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetByMint(r.Context(), chi.URLParam(r, "mint"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, apperr.New(apperr.KindValidation, "get", "coin not found"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, apperr.Wrap(apperr.KindInternal, "get", err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// feeRequest is the POST /fee body.
type feeRequest struct {
	RevokeMint   bool                `json:"revoke_mint"`
	RevokeUpdate bool                `json:"revoke_update"`
	RevokeFreeze bool                `json:"revoke_freeze"`
	Socials      []domain.SocialLink `json:"socials"`
	AuthorName   string              `json:"author_name"`
	AuthorEmail  string              `json:"author_email"`
}

type feeLine struct {
	Label  string `json:"label"`
	Amount string `json:"amount_sol"`
}

type feeResponse struct {
	Lines        []feeLine `json:"lines"`
	TotalSOL     string    `json:"total_sol"`
	TotalLamport uint64    `json:"total_lamports"`
	TotalUSD     string    `json:"total_usd"`
	Estimated    bool      `json:"usd_estimated"`
}

func (s *Server) handleFee(w http.ResponseWriter, r *http.Request) {
	var req feeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, apperr.Wrap(apperr.KindValidation, "fee", err))
		return
	}
	params := &domain.CoinCreationParams{
		RevokeMint:   req.RevokeMint,
		RevokeUpdate: req.RevokeUpdate,
		RevokeFreeze: req.RevokeFreeze,
		Socials:      req.Socials,
		AuthorName:   req.AuthorName,
		AuthorEmail:  req.AuthorEmail,
	}

	lines := s.creator.Quote(params)
	resp := feeResponse{Lines: make([]feeLine, 0, len(lines))}
	total := fees.Sum(lines)
	for _, l := range lines {
		resp.Lines = append(resp.Lines, feeLine{Label: l.Label, Amount: l.Amount.StringFixed(2)})
	}
	quote := s.price.SOLPriceUSD(r.Context())
	resp.TotalSOL = total.StringFixed(2)
	resp.TotalLamport = fees.ToLamports(total)
	resp.TotalUSD = quote.Convert(total).StringFixed(2)
	resp.Estimated = quote.FromFallback
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	quote := s.price.SOLPriceUSD(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sol_usd":       quote.USD.StringFixed(2),
		"from_fallback": quote.FromFallback,
		"fetched_at":    time.Now().UTC().Format(time.RFC3339),
	})
}

// parseForm reads the multipart token form.
func parseForm(r *http.Request) (*domain.CoinCreationParams, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	p := &domain.CoinCreationParams{
		Name:            r.FormValue("name"),
		Symbol:          r.FormValue("symbol"),
		Description:     r.FormValue("description"),
		AuthorName:      r.FormValue("author_name"),
		AuthorEmail:     r.FormValue("author_email"),
		RevokeMint:      formBool(r, "revoke_mint", false),
		RevokeUpdate:    formBool(r, "revoke_update", false),
		RevokeFreeze:    formBool(r, "revoke_freeze", false),
		IncludeMetadata: formBool(r, "include_metadata", true),
		Supply:          1_000_000_000,
		Decimals:        9,
	}
	if v := r.FormValue("supply"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("supply must be a positive integer")
		}
		p.Supply = n
	}
	if v := r.FormValue("decimals"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("decimals must be between 0 and %d", domain.MaxDecimals)
		}
		p.Decimals = uint8(n)
	}
	for _, platform := range domain.SocialPlatforms {
		v := strings.TrimSpace(r.FormValue(string(platform)))
		if v == "" {
			continue
		}
		if err := p.Socials.Add(domain.SocialLink{Platform: platform, URL: v}); err != nil {
			return nil, err
		}
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return nil, fmt.Errorf("image: %w", err)
	default:
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		if len(data) > maxImageBytes {
			return nil, fmt.Errorf("image must be at most %d bytes", maxImageBytes)
		}
		ct := header.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(data)
		}
		p.Image = &domain.ImageFile{Name: header.Filename, ContentType: ct, Data: data}
	}
	return p, nil
}

func formBool(r *http.Request, key string, def bool) bool {
	v := r.FormValue(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "on"
	}
	return b
}

// statusFor maps a failure kind to an HTTP status.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNoWalletConnected, apperr.KindWalletDisconnected:
		return http.StatusServiceUnavailable
	case apperr.KindSigningRejected:
		return http.StatusForbidden
	case apperr.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindTransaction, apperr.KindUnsupportedNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *apperr.Error) {
	writeJSON(w, status, map[string]interface{}{"error": e, "title": e.Title()})
}
