package http

import (
	"net/http"
	"strconv"

	"RentalLedger/internal/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Ledger.Products())
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Ledger.AddProduct(r.Context(), req.Name, string(req.Rate))
	if err != nil {
		h.fail(w, r, "add product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Ledger.UpdateProductRate(r.Context(), chi.URLParam(r, "name"), string(req.Rate))
	if err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeleteProduct(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.fail(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := h.Ledger.Expenses()
	out := make([]expenseResponse, 0, len(expenses))
	for i, e := range expenses {
		out = append(out, newExpense(i, e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, "add expense", err)
		return
	}
	e, err := h.Ledger.AddExpense(r.Context(), in)
	if err != nil {
		h.fail(w, r, "add expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, newExpense(len(h.Ledger.Expenses())-1, e))
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	index, ok := expenseIndex(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, "update expense", err)
		return
	}
	e, err := h.Ledger.UpdateExpense(r.Context(), index, in)
	if err != nil {
		h.fail(w, r, "update expense", err)
		return
	}
	writeJSON(w, http.StatusOK, newExpense(index, e))
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	index, ok := expenseIndex(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteExpense(r.Context(), index); err != nil {
		h.fail(w, r, "delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func expenseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		writeError(w, http.StatusBadRequest, "invalid expense index")
		return 0, false
	}
	return i, true
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s := h.Ledger.Settings()
	writeJSON(w, http.StatusOK, settingsResponse{Theme: s.Theme, Currency: s.Currency})
}

func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Ledger.SetTheme(r.Context(), models.Theme(req.Theme)); err != nil {
		h.fail(w, r, "set theme", err)
		return
	}
	h.GetSettings(w, r)
}

func (h *Handler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.Ledger.SetCurrency(r.Context(), req.Code); err != nil {
		h.fail(w, r, "set currency", err)
		return
	}
	h.GetSettings(w, r)
}

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Currencies)
}
