package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
)

// Handle reports an error from a collaborator without failing the
// operation that produced it
func Handle(ctx context.Context, err error) {
	logger := ctxlog.From(ctx)
	logger.Error("application error", "error", err)
}
