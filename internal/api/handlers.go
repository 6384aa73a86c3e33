package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/pkg/httputil"
	"github.com/ignite/trader-link/internal/service/linking"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	svc       *linking.Service
	startTime time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *linking.Service) *Handlers {
	return &Handlers{svc: svc, startTime: time.Now()}
}

// HealthCheck reports liveness for load balancers.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// ListOwnedListings returns every listing the account owns through any
// ownership signal, newest first.
func (h *Handlers) ListOwnedListings(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	listings, err := h.svc.ListingsOwnedBy(r.Context(), accountID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"account_id": accountID,
		"listings":   listings,
		"count":      len(listings),
	})
}

// CheckAccess answers whether one account may act on one listing.
func (h *Handlers) CheckAccess(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		httputil.BadRequest(w, "account_id query parameter is required")
		return
	}

	allowed, err := h.svc.CanAccess(r.Context(), listingID, accountID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"listing_id": listingID,
		"account_id": accountID,
		"allowed":    allowed,
	})
}

type connectRequest struct {
	ListingID string `json:"listing_id"`
	AccountID string `json:"account_id"`
	Mode      string `json:"mode"`
}

// Connect creates the link between a listing and an account.
func (h *Handlers) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.ListingID == "" || req.AccountID == "" {
		httputil.BadRequest(w, "listing_id and account_id are required")
		return
	}
	mode := domain.ConnectMode(req.Mode)
	if req.Mode == "" {
		mode = domain.ConnectBoth
	}

	if err := h.svc.Connect(r.Context(), req.ListingID, req.AccountID, mode); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"listing_id": req.ListingID,
		"account_id": req.AccountID,
		"mode":       mode,
	})
}

// Disconnect removes the explicit link. With an account_id the removal is
// conditional on that account holding the link; without one the link is
// cleared no matter who holds it. Absence of a link is not an error.
func (h *Handlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	accountID := r.URL.Query().Get("account_id")

	if err := h.svc.Disconnect(r.Context(), listingID, accountID); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// RunAutoLink executes one auto-link pass and returns its report, even
// when individual listings failed.
func (h *Handlers) RunAutoLink(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.AutoLink(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, report)
}

type provisionBatchRequest struct {
	BatchSize         int  `json:"batch_size"`
	Offset            int  `json:"offset"`
	UseSharedPassword bool `json:"use_shared_password"`
}

// RunProvisionBatch provisions one page of accounts and returns resumable
// progress. Partial failure is still a 200; the caller reads the errors
// list out of the batch report.
func (h *Handlers) RunProvisionBatch(w http.ResponseWriter, r *http.Request) {
	var req provisionBatchRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	batch, err := h.svc.RunBatch(r.Context(), req.BatchSize, req.Offset, req.UseSharedPassword)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, batch)
}

type createAccountRequest struct {
	SendNotification  bool `json:"send_notification"`
	UseSharedPassword bool `json:"use_shared_password"`
}

// CreateAccountForListing provisions a single account for the listing's
// contact email.
func (h *Handlers) CreateAccountForListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	var req createAccountRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	accountID, err := h.svc.CreateAccountFor(r.Context(), listingID, req.SendNotification, req.UseSharedPassword)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, map[string]any{
		"listing_id": listingID,
		"account_id": accountID,
	})
}

// RecentErrors returns the newest operational errors, most recent first.
func (h *Handlers) RecentErrors(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries := h.svc.ErrorLog().Recent(limit)
	httputil.OK(w, map[string]any{
		"errors": entries,
		"count":  len(entries),
	})
}

// writeServiceError maps service sentinels onto HTTP statuses: unknown
// entities are 404, semantic rejections 422, link conflicts 409.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, linking.ErrInvalidListing),
		errors.Is(err, linking.ErrInvalidAccount),
		errors.Is(err, linking.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, linking.ErrAlreadyConnected):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, linking.ErrInvalidMode),
		errors.Is(err, linking.ErrMissingEmail),
		errors.Is(err, linking.ErrInvalidEmail),
		errors.Is(err, linking.ErrWeakCredential):
		httputil.Unprocessable(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
