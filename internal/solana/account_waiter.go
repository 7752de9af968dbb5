package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"token-forge/internal/apperr"
)

var errAccountMissing = errors.New("account not found yet")

// AccountWaiter polls until an account exists, with exponential backoff and a hard deadline.
type AccountWaiter struct {
	rpc             RPCClient
	timeout         time.Duration
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
}

// NewAccountWaiter creates an AccountWaiter that gives up after timeout.
func NewAccountWaiter(rpc RPCClient, timeout time.Duration, logger *zap.Logger) *AccountWaiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountWaiter{
		rpc:             rpc,
		timeout:         timeout,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     5 * time.Second,
		logger:          logger,
	}
}

// WithIntervals overrides the polling intervals.
func (w *AccountWaiter) WithIntervals(initial, max time.Duration) *AccountWaiter {
	w.initialInterval = initial
	w.maxInterval = max
	return w
}

// Wait returns the account once it exists. If owner is non-empty the account must be
// owned by that program. Running out of time yields KindTimeout.
func (w *AccountWaiter) Wait(ctx context.Context, address, owner string) (*AccountInfo, error) {
	const op = "wait_account"

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialInterval
	b.MaxInterval = w.maxInterval
	b.MaxElapsedTime = w.timeout

	var (
		info     *AccountInfo
		ownerErr error
	)
	operation := func() error {
		acc, err := w.rpc.GetAccountInfo(ctx, address)
		if err != nil {
			return err
		}
		if acc == nil {
			return errAccountMissing
		}
		if owner != "" && acc.Owner != owner {
			ownerErr = fmt.Errorf("account %s is owned by %s, expected %s", address, acc.Owner, owner)
			return backoff.Permanent(ownerErr)
		}
		info = acc
		return nil
	}
	notify := func(err error, next time.Duration) {
		w.logger.Debug("account not ready", zap.String("address", address), zap.Error(err), zap.Duration("retry_in", next))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
	if err == nil {
		return info, nil
	}
	if ownerErr != nil {
		return nil, apperr.Wrap(apperr.KindTransaction, op, ownerErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	w.logger.Warn("gave up waiting for account", zap.String("address", address), zap.Error(err))
	return nil, apperr.Newf(apperr.KindTimeout, op, "account %s did not appear within %s", address, w.timeout)
}
