package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
)

// Handler exposes the cinevault service over HTTP.
type Handler struct {
	service cinevault.Service
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(service cinevault.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns the full route tree. The actor middleware must already have
// run; mutating endpoints reject requests without a resolved actor.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/contents", func(r chi.Router) {
		r.Post("/", h.SubmitContent)
		r.Get("/", h.ListContent)
		r.Get("/{id}", h.GetContent)

		r.Post("/{id}/review", h.ReviewContent)
		r.Post("/{id}/registration", h.ConfirmRegistration)
		r.Post("/{id}/registration/retry", h.RetryRegistration)
		r.Post("/{id}/rights", h.ConfirmRights)
		r.Post("/{id}/likes", h.LikeContent)

		r.Post("/{id}/rentals", h.RentContent)
		r.Get("/{id}/rentals", h.ListRentals)
		r.Get("/{id}/access", h.HasActiveAccess)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/withdrawals", h.WithdrawFees)
		r.Post("/deposits", h.Deposit)
		r.Post("/pause", h.Pause)
		r.Post("/unpause", h.Unpause)
		r.Post("/roles", h.GrantRole)
		r.Delete("/roles", h.RevokeRole)
	})

	return r
}

// Request/response bodies

// SubmitContentBody is the request body for submitting content.
type SubmitContentBody struct {
	TrailerURI    string `json:"trailer_uri"`
	MetadataURI   string `json:"metadata_uri"`
	Price         int64  `json:"price"`
	PaymentToken  string `json:"payment_token"`
	AmountOffered int64  `json:"amount_offered"`
}

// ReviewContentBody is the request body for moderating content.
type ReviewContentBody struct {
	Approve bool `json:"approve"`
}

// ConfirmRegistrationBody carries the external registry identifiers.
type ConfirmRegistrationBody struct {
	RegistryItemID         string `json:"registry_item_id"`
	RegistryLicenseTermsID string `json:"registry_license_terms_id"`
}

// RentContentBody is the request body for renting content.
type RentContentBody struct {
	AmountOffered int64 `json:"amount_offered"`
}

// DepositBody is the request body for crediting a ledger account.
type DepositBody struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// WithdrawBody is the request body for withdrawing platform fees.
type WithdrawBody struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

// RoleBody is the request body for granting or revoking a role.
type RoleBody struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

// AccessResponse reports whether a renter holds active access.
type AccessResponse struct {
	Renter    string `json:"renter"`
	ContentID int64  `json:"content_id"`
	Active    bool   `json:"active"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handlers

func (h *Handler) SubmitContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var body SubmitContentBody
	if !h.decode(w, r, &body) {
		return
	}

	content, err := h.service.SubmitContent(r.Context(), cinevault.SubmitContentRequest{
		Creator:       actor,
		TrailerURI:    body.TrailerURI,
		MetadataURI:   body.MetadataURI,
		Price:         body.Price,
		PaymentToken:  body.PaymentToken,
		AmountOffered: body.AmountOffered,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, content)
}

func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	content, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}

func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	req := cinevault.ListContentRequest{
		Status:  cinevault.ContentStatus(r.URL.Query().Get("status")),
		Creator: r.URL.Query().Get("creator"),
	}
	contents, err := h.service.ListContent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if contents == nil {
		contents = []*cinevault.ContentItem{}
	}
	render.JSON(w, r, contents)
}

func (h *Handler) ReviewContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	var body ReviewContentBody
	if !h.decode(w, r, &body) {
		return
	}

	content, err := h.service.ReviewContent(r.Context(), cinevault.ReviewContentRequest{
		Moderator: actor,
		ContentID: id,
		Approve:   body.Approve,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}

func (h *Handler) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	var body ConfirmRegistrationBody
	if !h.decode(w, r, &body) {
		return
	}

	content, err := h.service.ConfirmRegistration(r.Context(), cinevault.ConfirmRegistrationRequest{
		Operator:               actor,
		ContentID:              id,
		RegistryItemID:         body.RegistryItemID,
		RegistryLicenseTermsID: body.RegistryLicenseTermsID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}

func (h *Handler) RetryRegistration(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	if err := h.service.RetryRegistration(r.Context(), cinevault.RetryRegistrationRequest{
		Operator:  actor,
		ContentID: id,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "registration requested"})
}

func (h *Handler) ConfirmRights(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	content, err := h.service.ConfirmRightsConfigured(r.Context(), cinevault.ConfirmRightsRequest{
		Operator:  actor,
		ContentID: id,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}

func (h *Handler) LikeContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	if err := h.service.LikeContent(r.Context(), cinevault.LikeContentRequest{
		Account:   actor,
		ContentID: id,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handler) RentContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	var body RentContentBody
	if !h.decode(w, r, &body) {
		return
	}

	record, err := h.service.RentContent(r.Context(), cinevault.RentContentRequest{
		Renter:        actor,
		ContentID:     id,
		AmountOffered: body.AmountOffered,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, record)
}

func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	records, err := h.service.ListRentals(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, records)
}

func (h *Handler) HasActiveAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	renter := r.URL.Query().Get("renter")
	if renter == "" {
		renter = ActorFromContext(r.Context())
	}
	if renter == "" {
		h.badRequest(w, r, "renter is required")
		return
	}

	active, err := h.service.HasActiveAccess(r.Context(), renter, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, AccessResponse{Renter: renter, ContentID: id, Active: active})
}

func (h *Handler) WithdrawFees(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var body WithdrawBody
	if !h.decode(w, r, &body) {
		return
	}

	if err := h.service.WithdrawFees(r.Context(), cinevault.WithdrawFeesRequest{
		Admin:  actor,
		Token:  body.Token,
		Amount: body.Amount,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "withdrawn"})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	// Deposits mint ledger value, so the endpoint is admin-only even though
	// the service-level operation is open to internal callers.
	isAdmin, err := h.service.HasRole(r.Context(), cinevault.RoleAdmin, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !isAdmin {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, errorResponse{Error: "deposit requires the admin role"})
		return
	}
	var body DepositBody
	if !h.decode(w, r, &body) {
		return
	}

	if err := h.service.Deposit(r.Context(), cinevault.DepositRequest{
		Token:   body.Token,
		Account: body.Account,
		Amount:  body.Amount,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "deposited"})
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := h.service.Pause(r.Context(), actor); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"paused": true})
}

func (h *Handler) Unpause(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	if err := h.service.Unpause(r.Context(), actor); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]bool{"paused": false})
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var body RoleBody
	if !h.decode(w, r, &body) {
		return
	}

	if err := h.service.GrantRole(r.Context(), cinevault.GrantRoleRequest{
		Admin:   actor,
		Role:    cinevault.Role(body.Role),
		Account: body.Account,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "granted"})
}

func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var body RoleBody
	if !h.decode(w, r, &body) {
		return
	}

	if err := h.service.RevokeRole(r.Context(), cinevault.RevokeRoleRequest{
		Admin:   actor,
		Role:    cinevault.Role(body.Role),
		Account: body.Account,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "revoked"})
}

// Helpers

func (h *Handler) contentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(w, r, "invalid content id")
		return 0, false
	}
	return id, true
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := ActorFromContext(r.Context())
	if actor == "" {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{Error: "no acting account resolved"})
		return "", false
	}
	return actor, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.badRequest(w, r, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cinevault.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, cinevault.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, cinevault.ErrContentNotFound), errors.Is(err, cinevault.ErrRentalNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cinevault.ErrInsufficientFunds), errors.Is(err, cinevault.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, cinevault.ErrInvalidStatus),
		errors.Is(err, cinevault.ErrAlreadyLiked),
		errors.Is(err, cinevault.ErrReentrantCall):
		status = http.StatusConflict
	case errors.Is(err, cinevault.ErrPaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, cinevault.ErrRegistryUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}
