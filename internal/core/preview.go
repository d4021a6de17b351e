package core

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/budgetcsv"
	"github.com/JonMunkholm/orcamentos/internal/model"
)

// previewSampleSize bounds the budgets echoed back by PreviewImport.
const previewSampleSize = 5

// PreviewSummary counts what an import would store.
type PreviewSummary struct {
	Records           int   `json:"records"`
	WithInstallments  int   `json:"with_installments"`
	TotalCents        int64 `json:"total_cents"`
	IncludesDelivery  int   `json:"includes_delivery"`
	IncludesProtector int   `json:"includes_screen_protector"`
}

// PreviewResponse is the dry-run result of an import.
type PreviewResponse struct {
	Summary          PreviewSummary `json:"summary"`
	Samples          []model.Budget `json:"samples"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
}

// PreviewImport parses an upload exactly as ImportBudgets does but stores
// nothing. File errors are the ones a real import would return.
func (s *Service) PreviewImport(ctx context.Context, ownerID string, r io.Reader) (*PreviewResponse, error) {
	if err := validateID(ownerID); err != nil {
		return nil, ErrInvalidOwner
	}
	start := time.Now()

	content, err := ReadImport(r, s.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	budgets, err := budgetcsv.ParseAt(content, ownerID, s.now())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &PreviewResponse{Samples: budgets[:min(len(budgets), previewSampleSize)]}
	for i := range budgets {
		b := &budgets[i]
		resp.Summary.Records++
		resp.Summary.TotalCents += b.TotalPriceCents
		if b.Installments > 1 {
			resp.Summary.WithInstallments++
		}
		if b.IncludesDelivery {
			resp.Summary.IncludesDelivery++
		}
		if b.IncludesScreenProtector {
			resp.Summary.IncludesProtector++
		}
	}
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}
