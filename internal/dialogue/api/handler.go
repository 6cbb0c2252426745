package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ticketgenie/internal/auth"
	"ticketgenie/internal/dialogue"
	"ticketgenie/internal/issuance"
	"ticketgenie/internal/logger"
	"ticketgenie/internal/models"
	"ticketgenie/internal/pricing"
	"ticketgenie/internal/utils"
)

type CatalogStore interface {
	ListShows(ctx context.Context) ([]models.Show, error)
	GetShow(ctx context.Context, id int64) (*models.Show, error)
}

type BookingLedger interface {
	Get(ctx context.Context, id int64) (*models.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]models.Booking, error)
}

type Renderer interface {
	Render(receipt models.BookingReceipt) ([]byte, error)
}

type Handler struct {
	Machine  *dialogue.Machine
	Sessions *dialogue.Manager
	Catalog  CatalogStore
	Ledger   BookingLedger
	Renderer Renderer
	Logger   *logger.Logger
}

func (h *Handler) session(r *http.Request) *dialogue.Session {
	return h.Sessions.GetOrCreate(auth.SessionID(r.Context()), auth.Username(r.Context()))
}

// Chat runs one dialogue transition for the caller's session.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("message is required", ""))
		return
	}

	resp := h.Machine.Handle(r.Context(), h.session(r), req.Message)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", resp))
}

func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", h.session(r).Snapshot()))
}

// Reset abandons any booking flow in progress and returns the session to
// the initial state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Reset(auth.SessionID(r.Context()))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("session reset", nil))
}

func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Catalog.ListShows(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to list shows", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", shows))
}

// ListBookings returns the bookings made under an email address. Bookings
// are keyed by the contact email given during the dialogue, not by the
// login, so the address is an explicit query parameter.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("email query parameter is required", ""))
		return
	}

	bookings, err := h.Ledger.ListByEmail(r.Context(), email)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to list bookings", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", bookings))
}

// DownloadTicket re-renders the ticket PDF for an existing booking, the
// download counterpart to the emailed copy.
func (h *Handler) DownloadTicket(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid booking id", err.Error()))
		return
	}

	booking, err := h.Ledger.Get(r.Context(), bookingID)
	if errors.Is(err, models.ErrNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("booking not found", ""))
		return
	}
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load booking", err.Error()))
		return
	}

	show, err := h.Catalog.GetShow(r.Context(), booking.ShowID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to load show", err.Error()))
		return
	}

	receipt := models.BookingReceipt{
		BookingID:   booking.BookingID,
		Name:        booking.Name,
		Email:       booking.Email,
		Phone:       booking.Phone,
		Movie:       show.Name,
		ShowDate:    show.Date,
		Showtime:    show.Showtime,
		TicketCount: booking.TicketCount,
		TotalPrice:  pricing.Total(show, booking.TicketCount),
		CreatedAt:   booking.CreatedAt,
	}

	document, err := h.Renderer.Render(receipt)
	if err != nil {
		h.Logger.Error("DELIVERY", fmt.Sprintf("render for download of booking %d: %v", bookingID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to render ticket", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", issuance.Filename(booking.Name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}
