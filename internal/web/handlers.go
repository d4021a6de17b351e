package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/core"
	"github.com/JonMunkholm/orcamentos/internal/logging"
	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/JonMunkholm/orcamentos/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

var (
	errNoFile = errors.New("no file provided")
	// multipartSlack covers boundaries and part headers around the file.
	multipartSlack int64 = 64 << 10
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTemplate serves the import template as a download.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, r, "modelo-orcamentos.csv", s.service.Template())
}

// handleImport accepts either a multipart form with a "file" field or the
// CSV as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	owner := core.OwnerFromContext(r.Context())
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartSlack)

	body, closeFn, err := importBody(r)
	if err != nil {
		respondBodyError(w, r, err)
		return
	}
	defer closeFn()

	res, err := s.service.ImportBudgets(r.Context(), owner, body)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		if err := templates.ImportSummary(res.Inserted).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render import summary", "error", err)
		}
		return
	}
	writeJSON(w, r, http.StatusCreated, importResponse{
		ImportID: res.ImportID,
		Inserted: res.Inserted,
		Duration: res.Duration.Round(time.Millisecond).String(),
	})
}

// handlePreview validates an upload without storing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartSlack)

	body, closeFn, err := importBody(r)
	if err != nil {
		respondBodyError(w, r, err)
		return
	}
	defer closeFn()

	preview, err := s.service.PreviewImport(r.Context(), core.OwnerFromContext(r.Context()), body)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

// respondBodyError reports a request whose upload could not be located.
func respondBodyError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	respondError(w, r, err, status)
}

// importBody returns the uploaded file as a stream. Multipart bodies are
// read part by part so the file is never buffered twice.
func importBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, errNoFile
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil, errNoFile
		}
		if err != nil {
			return nil, nil, err
		}
		if part.FormName() == "file" {
			return part, func() { part.Close() }, nil
		}
		part.Close()
	}
}

// handleExport serves every budget outside the trash as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	owner := core.OwnerFromContext(r.Context())
	out, err := s.service.ExportBudgets(r.Context(), owner)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	name := "orcamentos-" + time.Now().Format(time.DateOnly) + ".csv"
	writeCSV(w, r, name, out)
}

func (s *Server) handleListTrash(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListTrash(r.Context(), core.OwnerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, trashResponse{
		RetentionDays: s.cfg.Trash.RetentionDays,
		Items:         entries,
	})
}

func (s *Server) handleTrash(w http.ResponseWriter, r *http.Request) {
	s.budgetAction(w, r, s.service.TrashBudget)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.budgetAction(w, r, s.service.RestoreBudget)
}

func (s *Server) handleDeleteFromTrash(w http.ResponseWriter, r *http.Request) {
	s.budgetAction(w, r, s.service.DeleteFromTrash)
}

func (s *Server) budgetAction(w http.ResponseWriter, r *http.Request, fn budgetActionFunc) {
	owner := core.OwnerFromContext(r.Context())
	if err := fn(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLicenseNotice returns 204 when there is nothing to show.
func (s *Server) handleLicenseNotice(w http.ResponseWriter, r *http.Request) {
	notice, err := s.service.LicenseNotice(r.Context(), core.OwnerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if notice == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.LicenseBanner(string(notice.Level), notice.Message).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render license banner", "error", err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, notice)
}

// handleImportStatus reports import slot usage so clients can back off.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.ImportStatus())
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	imports, err := s.service.ListImports(r.Context(), core.OwnerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if imports == nil {
		imports = []model.ImportSummary{}
	}
	writeJSON(w, r, http.StatusOK, imports)
}

// handleUndoImport trashes what is left of one import.
func (s *Server) handleUndoImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.UndoImport(r.Context(), core.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
