package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/orcamentos/internal/license"
	"github.com/JonMunkholm/orcamentos/internal/logging"
	"github.com/JonMunkholm/orcamentos/internal/metrics"
	"github.com/JonMunkholm/orcamentos/internal/store"
)

// LicenseNotice returns the expiry notice due for the owner today, or nil
// when there is none or it has already been shown. Owners without a license
// row get no notice.
func (s *Service) LicenseNotice(ctx context.Context, ownerID string) (*license.Notice, error) {
	if err := validateID(ownerID); err != nil {
		return nil, ErrInvalidOwner
	}
	if s.notifier == nil || s.licenses == nil {
		return nil, nil
	}

	lic, err := s.licenses.GetLicense(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}

	notice, err := s.notifier.Check(ctx, ownerID, lic.ExpiresAt, s.now())
	if err != nil {
		return nil, fmt.Errorf("check license notice: %w", err)
	}
	if notice != nil {
		metrics.LicenseNotices.WithLabelValues(string(notice.Level)).Inc()
		logging.FromContext(ctx).Info("license notice issued",
			"level", notice.Level,
			"days_left", notice.DaysLeft,
		)
	}
	return notice, nil
}
