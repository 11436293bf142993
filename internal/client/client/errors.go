package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
)

// mapError turns a transport or status error into a common sentinel.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var se *netx.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	switch {
	case se.Code == http.StatusNotFound, se.Code == http.StatusGone:
		return common.ErrNotFoundOrExpired
	case se.Code == http.StatusUnauthorized, se.Code == http.StatusForbidden:
		return common.ErrAccessDenied
	case se.Code == http.StatusRequestEntityTooLarge:
		return common.ErrFileTooLarge
	case se.Code == http.StatusBadRequest && strings.Contains(se.Message, common.ErrSizeMismatch.Error()):
		return common.ErrSizeMismatch
	case se.Retryable():
		return fmt.Errorf("%w: %s", common.ErrUnavailable, se.Status)
	default:
		return fmt.Errorf("%w: %s", common.ErrorIncorrectMetadata, se.Message)
	}
}
