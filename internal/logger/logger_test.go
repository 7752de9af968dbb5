package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"", "development", "production"} {
		l, err := New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}
}

func TestMaskAddress(t *testing.T) {
	assert.Equal(t, "6ASN...cawh", MaskAddress("6ASNcMLW2rQjt11hWzh9J4TFKUVJHVXUAcyDR9JNcawh"))
	assert.Equal(t, "short", MaskAddress("short"))
}
