package service

import (
	"context"
	"errors"

	"github.com/achievehub/achievehub/internal/adapters/upload"
	"github.com/achievehub/achievehub/internal/domain/errs"
)

// PresignUpload issues a direct upload URL for an activity image.
func (s *Service) PresignUpload(ctx context.Context, fileName, fileType string) (upload.Result, error) {
	const op = "service.PresignUpload"
	if s.uploads == nil {
		return upload.Result{}, errs.E(op, errs.Unexpected, errs.CodeInternal, "uploads are not configured")
	}
	res, err := s.uploads.Presign(ctx, fileName, fileType)
	switch {
	case errors.Is(err, upload.ErrMissingFile), errors.Is(err, upload.ErrUnsupportedType):
		return upload.Result{}, errs.Wrap(op, errs.Validation, errs.CodeInvalidInput, err)
	case err != nil:
		return upload.Result{}, errs.Wrap(op, errs.Unexpected, errs.CodeInternal, err)
	}
	return res, nil
}
