package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVersionCompatible(t *testing.T) {
	assert.True(t, IsVersionCompatible(Version))
	assert.True(t, IsVersionCompatible("0.1.9"))
	assert.True(t, IsVersionCompatible("v0.1.2"))
	assert.False(t, IsVersionCompatible("0.2.0"))
	assert.False(t, IsVersionCompatible("1.0.0"))
	assert.False(t, IsVersionCompatible("latest"))
}
