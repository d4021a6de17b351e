package web

// Shared response helpers and payload types for the handlers.

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/JonMunkholm/orcamentos/internal/core"
	"github.com/JonMunkholm/orcamentos/internal/logging"
)

type budgetActionFunc func(ctx context.Context, ownerID, id string) error

type importResponse struct {
	ImportID string `json:"import_id"`
	Inserted int64  `json:"inserted"`
	Duration string `json:"duration"`
}

type trashResponse struct {
	RetentionDays int               `json:"retention_days"`
	Items         []core.TrashEntry `json:"items"`
}

// writeJSON encodes v with status. Encoding errors are logged since the
// header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// writeCSV sends body as a file download.
func writeCSV(w http.ResponseWriter, r *http.Request, filename, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.WriteString(w, body); err != nil {
		logging.FromContext(r.Context()).Warn("csv write interrupted", "file", filename, "error", err)
	}
}
