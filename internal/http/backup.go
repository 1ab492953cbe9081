package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"RentalLedger/internal/backup"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ExportBackup downloads the whole ledger as a backup document.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	b := h.Ledger.Export()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Name(b.BackupDate)))
	writeJSON(w, http.StatusOK, b)
}

// SaveBackup writes a backup to the configured target.
func (h *Handler) SaveBackup(w http.ResponseWriter, r *http.Request) {
	if h.Backups == nil {
		writeError(w, http.StatusServiceUnavailable, "no backup target configured")
		return
	}
	b := h.Ledger.Export()
	location, err := backup.Write(r.Context(), h.Backups, b)
	if err != nil {
		h.fail(w, r, "save backup", err)
		return
	}
	h.Logger.Info("backup saved", zap.String("location", location))
	writeJSON(w, http.StatusCreated, backupSavedResponse{Name: backup.Name(b.BackupDate), Location: location})
}

// RestoreBackup replaces the ledger with the uploaded backup document.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "backup too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}
	h.restore(w, r, payload)
}

// RestoreSavedBackup restores a backup previously written to the target.
func (h *Handler) RestoreSavedBackup(w http.ResponseWriter, r *http.Request) {
	if h.Backups == nil {
		writeError(w, http.StatusServiceUnavailable, "no backup target configured")
		return
	}
	payload, err := h.Backups.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, "load backup", err)
		return
	}
	h.restore(w, r, payload)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request, payload []byte) {
	if err := h.Ledger.Restore(r.Context(), payload); err != nil {
		h.fail(w, r, "restore backup", err)
		return
	}
	h.Logger.Info("backup restored", zap.Int("orders", len(h.Ledger.Orders())))
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
