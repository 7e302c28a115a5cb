package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/repository"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// inTxWithRetry runs fn in a transaction and repeats it once after a lost
// compare-and-set race or a serialization failure.
func inTxWithRetry(ctx context.Context, tx repository.Transactor, fn func(repository.Factory) error) error {
	err := tx.InTx(ctx, fn)
	if !errors.Is(err, domainErrors.ErrConflict) {
		return err
	}
	telemetry.TransitionConflictsTotal.Inc()
	return tx.InTx(ctx, fn)
}

// conflictAsInvalidTransition reports a second lost race as a rejected transition.
func conflictAsInvalidTransition(err error) error {
	if errors.Is(err, domainErrors.ErrConflict) {
		return fmt.Errorf("%w: state changed concurrently", domainErrors.ErrInvalidTransition)
	}
	return err
}
