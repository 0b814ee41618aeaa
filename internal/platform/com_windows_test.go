//go:build windows

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyConfigLayout(t *testing.T) {
	assert.Equal(t, 11, vtblPolicyGetVal)
	assert.Equal(t, "Release", policyConfigLayout[vtblRelease])
	assert.Equal(t, "ResetDeviceFormat", policyConfigLayout[5])
	assert.Equal(t, "SetShareMode", policyConfigLayout[10])
}
