// Package chi exposes the vector search and recommendation API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/onshop/prodvec/internal/domain"
	healthuc "github.com/onshop/prodvec/internal/usecase/health"
	raguc "github.com/onshop/prodvec/internal/usecase/rag"
	syncuc "github.com/onshop/prodvec/internal/usecase/sync"
	vectoruc "github.com/onshop/prodvec/internal/usecase/vector"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeInvalidQuery         ErrorCode = "invalid_query"
	CodeInvalidTopK          ErrorCode = "invalid_top_k"
	CodeProductNotFound      ErrorCode = "product_not_found"
	CodeVectorNotFound       ErrorCode = "vector_not_found"
	CodeEmbeddingProviderErr ErrorCode = "embedding_provider_error"
	CodeChatProviderErr      ErrorCode = "chat_provider_error"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body for every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services to HTTP routes.
type Server struct {
	vectors       *vectoruc.Service
	sync          *syncuc.Service
	rag           *raguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	vectors *vectoruc.Service,
	sync *syncuc.Service,
	rag *raguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		vectors: vectors,
		sync:    sync,
		rag:     rag,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeProductNotFound),
		sentinelHandler(domain.ErrVectorNotFound, http.StatusNotFound, CodeVectorNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, CodeInvalidTopK),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderErr),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, CodeChatProviderErr),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/vector", func(r chi.Router) {
		r.Get("/search", s.SearchProducts)
		r.Get("/rag", s.Recommend)
		r.Post("/sync", s.SyncAll)
		r.Post("/test/{productID}", s.SyncOne)
		r.Post("/", s.SaveVector)
		r.Get("/{productID}", s.GetVector)
		r.Put("/{productID}", s.UpdateVector)
		r.Delete("/{productID}", s.DeleteVector)
	})
}

type vectorRecordResponse struct {
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Price      int64     `json:"price"`
	SourceHash string    `json:"source_hash"`
	Dimensions int       `json:"dimensions"`
	SyncedAt   time.Time `json:"synced_at"`
}

func recordToResponse(pv domain.ProductVector) vectorRecordResponse {
	return vectorRecordResponse{
		ProductID:  pv.ProductID,
		Name:       pv.Name,
		Category:   pv.Category,
		Price:      pv.Price,
		SourceHash: pv.SourceHash,
		Dimensions: len(pv.Vector),
		SyncedAt:   pv.SyncedAt,
	}
}

type saveVectorRequest struct {
	ProductID int64  `json:"product_id"`
	Content   string `json:"content"`
}

type updateVectorRequest struct {
	Content string `json:"content"`
}

type deleteVectorResponse struct {
	ProductID int64 `json:"product_id"`
	Deleted   bool  `json:"deleted"`
}

type searchResponse struct {
	Query string                  `json:"query"`
	Items []domain.ProductSummary `json:"items"`
}

type ragResponse struct {
	RewrittenQuery  string                  `json:"rewritten_query"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// SearchProducts handles GET /vector/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "query parameter is required")
		return
	}

	items, err := s.vectors.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if items == nil {
		items = []domain.ProductSummary{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Items: items})
}

// Recommend handles GET /vector/rag. A rewritten query that fails structural
// validation yields 400 with an empty recommendation list.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "query parameter is required")
		return
	}

	result, err := s.rag.Recommend(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := ragResponse{
		RewrittenQuery:  result.RewrittenQuery,
		Recommendations: result.Recommendations,
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []domain.Recommendation{}
	}

	status := http.StatusOK
	if result.Rejected {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

// GetVector handles GET /vector/{productID}.
func (s *Server) GetVector(w http.ResponseWriter, r *http.Request) {
	productID, ok := s.productIDParam(w, r)
	if !ok {
		return
	}

	pv, err := s.vectors.Get(r.Context(), productID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(pv))
}

// SaveVector handles POST /vector. Creates or overwrites the record.
func (s *Server) SaveVector(w http.ResponseWriter, r *http.Request) {
	var req saveVectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "product_id must be positive")
		return
	}

	pv, err := s.vectors.Save(r.Context(), req.ProductID, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordToResponse(pv))
}

// UpdateVector handles PUT /vector/{productID}. The record must already exist.
func (s *Server) UpdateVector(w http.ResponseWriter, r *http.Request) {
	productID, ok := s.productIDParam(w, r)
	if !ok {
		return
	}

	var req updateVectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	pv, err := s.vectors.Update(r.Context(), productID, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(pv))
}

// DeleteVector handles DELETE /vector/{productID}.
func (s *Server) DeleteVector(w http.ResponseWriter, r *http.Request) {
	productID, ok := s.productIDParam(w, r)
	if !ok {
		return
	}

	if err := s.vectors.Delete(r.Context(), productID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteVectorResponse{
		ProductID: productID,
		Deleted:   true,
	})
}

// SyncAll handles POST /vector/sync.
func (s *Server) SyncAll(w http.ResponseWriter, r *http.Request) {
	report, err := s.sync.SyncAll(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// SyncOne handles POST /vector/test/{productID}. Re-embeds one product
// regardless of its stored content hash.
func (s *Server) SyncOne(w http.ResponseWriter, r *http.Request) {
	productID, ok := s.productIDParam(w, r)
	if !ok {
		return
	}

	pv, err := s.sync.SyncOne(r.Context(), productID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(pv))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productID")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "product id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrVectorNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidTopK,
		domain.ErrEmbeddingProviderError,
		domain.ErrChatProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
