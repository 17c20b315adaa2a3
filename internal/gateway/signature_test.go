package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSignature(t *testing.T) {
	// HMAC-SHA256("order_abc123|pay_def456", "secret")
	want := "8dcbf3dd0252d4ce003f8a613a63ebf12ead8ba9fdd9f72aa9ed1bb1def37f38"
	assert.Equal(t, want, ComputeSignature("order_abc123", "pay_def456", "secret"))
}

func TestSignaturePayload(t *testing.T) {
	assert.Equal(t, "a|b", SignaturePayload("a", "b"))
}

func TestVerifySignature(t *testing.T) {
	sig := ComputeSignature("order_1", "pay_1", "key")

	assert.True(t, VerifySignature("order_1", "pay_1", sig, "key"))
	assert.False(t, VerifySignature("order_1", "pay_1", sig, "other-key"))
	assert.False(t, VerifySignature("order_2", "pay_1", sig, "key"))
	assert.False(t, VerifySignature("order_1", "pay_1", "tampered", "key"))
	assert.False(t, VerifySignature("order_1", "pay_1", "", "key"))
}
