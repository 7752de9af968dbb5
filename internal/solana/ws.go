package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeSignature subscribes to the confirmation of a single transaction signature.
	// The subscription delivers at most one notification and is then closed.
	SubscribeSignature(ctx context.Context, signature string, commitment Commitment) (*SignatureSubscription, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification is sent when the signature reaches the subscribed commitment.
type SignatureNotification struct {
	Signature string
	Slot      uint64
	Err       interface{} // on-chain error, nil on success
}

// SignatureSubscription is a live signatureSubscribe.
type SignatureSubscription struct {
	// C receives the notification; it is closed after delivery or on Unsubscribe.
	C <-chan SignatureNotification

	unsubscribe func()
}

// Unsubscribe stops the subscription. Safe to call more than once.
func (s *SignatureSubscription) Unsubscribe() {
	if s != nil && s.unsubscribe != nil {
		s.unsubscribe()
	}
}
