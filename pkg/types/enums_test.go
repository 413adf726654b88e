package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryStateString(t *testing.T) {
	tests := []struct {
		state DiscoveryState
		want  string
	}{
		{StateStopped, "stopped"},
		{StateStarting, "starting"},
		{StateStarted, "started"},
		{StateStopping, "stopping"},
		{DiscoveryState(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeInternal, "internal"},
		{ErrCodeTimeout, "timeout"},
		{ErrCodeBadName, "bad_name"},
		{ErrCodeNetwork, "network"},
		{ErrCodeBusy, "busy"},
		{ErrorCode(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.String())
	}
}

func TestErrorCodeZeroValue(t *testing.T) {
	// 零值与平台内部错误码对应
	var code ErrorCode
	assert.Equal(t, ErrCodeInternal, code)
}
