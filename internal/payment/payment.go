// Package payment verifies payment gateway confirmations.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Sign returns the gateway signature of a confirmation: the hex HMAC-SHA256
// of "orderID|paymentID" keyed with the account's key secret.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the gateway's signature for
// the order and payment ids. Any empty input fails verification.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || secret == "" {
		return false
	}
	want := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(want))
}

// NewOrderID returns a gateway-style order id for orders created by the
// local store.
func NewOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
