package http

import (
	"net/http"

	"RentalLedger/internal/backup"
	"RentalLedger/internal/calendar"
	"RentalLedger/internal/clock"
	"RentalLedger/internal/models"
	"RentalLedger/internal/render"
	"RentalLedger/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Ledger         *services.Ledger
	Renderer       render.Renderer
	Backups        backup.Target
	Clock          clock.Clock
	CalendarPolicy calendar.OpenEndedPolicy
	Logger         *zap.Logger
}

func NewHandler(ledger *services.Ledger) *Handler {
	return &Handler{
		Ledger:         ledger,
		Renderer:       render.NewRenderer(),
		Clock:          clock.NewSystem(),
		CalendarPolicy: calendar.OpenEndedExclude,
		Logger:         zap.NewNop(),
	}
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.OrderActive, models.OrderCompleted:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	orders := h.Ledger.Orders()
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, "create order", err)
		return
	}
	order, err := h.Ledger.CreateOrder(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create order", err)
		return
	}
	h.writeOrder(w, r, http.StatusCreated, order.ID)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.writeOrder(w, r, http.StatusOK, chi.URLParam(r, "orderId"))
}

func (h *Handler) EditOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, "edit order", err)
		return
	}
	order, err := h.Ledger.EditOrder(r.Context(), chi.URLParam(r, "orderId"), in)
	if err != nil {
		h.fail(w, r, "edit order", err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, order.ID)
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Ledger.CompleteOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, r, "complete order", err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, order.ID)
}

func (h *Handler) RestoreOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Ledger.RestoreOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, r, "restore order", err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, order.ID)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeleteOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		h.fail(w, r, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EditPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.Ledger.QuickEditPrice(r.Context(), chi.URLParam(r, "orderId"), string(req.Value))
	if err != nil {
		h.fail(w, r, "edit price", err)
		return
	}
	h.writeOrder(w, r, http.StatusOK, order.ID)
}

func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	view, err := h.Ledger.Quote(chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, r, "invoice", err)
		return
	}
	html, err := h.Renderer.RenderInvoice(render.InvoiceInput{
		Order:    view.Order,
		Quote:    view.Quote,
		Currency: h.Ledger.Settings().Currency,
		IssuedAt: h.Clock.Now(),
	})
	if err != nil {
		h.fail(w, r, "invoice", err)
		return
	}
	writeHTML(w, html)
}

func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, status int, id string) {
	view, err := h.Ledger.Quote(id)
	if err != nil {
		h.fail(w, r, "get order", err)
		return
	}
	writeJSON(w, status, newOrderView(view))
}

func zapRequest(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}
