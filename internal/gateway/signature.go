package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignaturePayload is the message Razorpay signs on checkout completion.
func SignaturePayload(orderID, paymentID string) string {
	return orderID + "|" + paymentID
}

// ComputeSignature returns the hex HMAC-SHA256 of orderID|paymentID keyed
// by the gateway shared secret.
func ComputeSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(SignaturePayload(orderID, paymentID)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a supplied signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected := ComputeSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
