package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"token-forge/internal/apperr"
)

// ErrBlockhashExpired is returned when the chain passes the transaction's
// lastValidBlockHeight without the signature being confirmed.
var ErrBlockhashExpired = errors.New("blockhash expired before the transaction was confirmed")

// TransactionError carries an on-chain failure reported for a signature.
type TransactionError struct {
	Signature string
	Err       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

// Confirmer waits for signatures to reach a commitment level.
type Confirmer struct {
	rpc          RPCClient
	ws           WSClient
	commitment   Commitment
	pollInterval time.Duration
	logger       *zap.Logger
}

// ConfirmerOption configures Confirmer.
type ConfirmerOption func(*Confirmer)

// WithWebSocket enables push confirmation through signatureSubscribe.
// Polling continues alongside it to check the blockhash bound.
func WithWebSocket(ws WSClient) ConfirmerOption {
	return func(c *Confirmer) { c.ws = ws }
}

// WithPollInterval sets how often statuses and block height are polled.
func WithPollInterval(d time.Duration) ConfirmerOption {
	return func(c *Confirmer) { c.pollInterval = d }
}

// WithConfirmCommitment sets the commitment to wait for.
func WithConfirmCommitment(cm Commitment) ConfirmerOption {
	return func(c *Confirmer) { c.commitment = cm }
}

// WithConfirmerLogger sets the logger.
func WithConfirmerLogger(l *zap.Logger) ConfirmerOption {
	return func(c *Confirmer) { c.logger = l }
}

// NewConfirmer creates a Confirmer.
func NewConfirmer(rpc RPCClient, opts ...ConfirmerOption) *Confirmer {
	c := &Confirmer{
		rpc:          rpc,
		commitment:   CommitmentConfirmed,
		pollInterval: 2 * time.Second,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm blocks until signature reaches the configured commitment.
// Failures are classified: an on-chain error or an expired blockhash is KindTransaction,
// a context deadline is KindTimeout.
func (c *Confirmer) Confirm(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	const op = "confirm"

	var notifications <-chan SignatureNotification
	if c.ws != nil {
		sub, err := c.ws.SubscribeSignature(ctx, signature, c.commitment)
		if err != nil {
			c.logger.Warn("signature subscription failed, polling only", zap.String("signature", signature), zap.Error(err))
		} else {
			defer sub.Unsubscribe()
			notifications = sub.C
		}
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		done, err := c.check(ctx, signature, lastValidBlockHeight)
		if done {
			return classifyConfirmError(op, err)
		}
		if err != nil {
			c.logger.Debug("confirmation poll failed", zap.String("signature", signature), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return classifyConfirmError(op, ctx.Err())
		case n, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			if n.Err != nil {
				return classifyConfirmError(op, &TransactionError{Signature: signature, Err: n.Err})
			}
			return nil
		case <-ticker.C:
		}
	}
}

// check polls once. done is true when the outcome is final; err is then the result.
func (c *Confirmer) check(ctx context.Context, signature string, lastValidBlockHeight uint64) (bool, error) {
	statuses, err := c.rpc.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return false, err
	}
	if len(statuses) > 0 && statuses[0] != nil {
		st := statuses[0]
		if st.Err != nil {
			return true, &TransactionError{Signature: signature, Err: st.Err}
		}
		if st.Reached(c.commitment) {
			return true, nil
		}
	}

	if lastValidBlockHeight == 0 {
		return false, nil
	}
	height, err := c.rpc.GetBlockHeight(ctx)
	if err != nil {
		return false, err
	}
	if height > lastValidBlockHeight {
		return true, ErrBlockhashExpired
	}
	return false, nil
}

func classifyConfirmError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, op, err)
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindInternal, op, err)
	}
	return apperr.Wrap(apperr.KindTransaction, op, err)
}
