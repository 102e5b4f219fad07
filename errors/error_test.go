package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeWalksChain(t *testing.T) {
	inner := New(ErrCodeInvalidStopLoss, "stop above price")
	outer := Wrap(ErrCodeOrderRejected, "open refused", inner)
	wrapped := fmt.Errorf("tick: %w", outer)

	assert.True(t, HasCode(wrapped, ErrCodeOrderRejected))
	assert.True(t, HasCode(wrapped, ErrCodeInvalidStopLoss))
	assert.False(t, HasCode(wrapped, ErrCodeDataUnavailable))
	assert.Equal(t, ErrCodeOrderRejected, GetCode(wrapped))
}

func TestGetCodeOnPlainError(t *testing.T) {
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("boom")))
	assert.False(t, HasCode(nil, ErrCodeUnknown))
}

func TestErrorString(t *testing.T) {
	err := Newf(ErrCodeDataUnavailable, "series %s has %d samples", "H1:RSI(8)", 1)
	assert.Equal(t, "[data_unavailable] series H1:RSI(8) has 1 samples", err.Error())

	wrapped := Wrap(ErrCodeFeedFailed, "read row", fmt.Errorf("eof"))
	assert.Equal(t, "[feed_failed] read row: eof", wrapped.Error())
}
