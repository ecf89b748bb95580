package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	qrBytes, err := GenerateQRCode("http://localhost:8002/t/TKT-ABC123", 256)
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, qrBytes[:8])
}

func TestGenerateQRCodeDifferentContent(t *testing.T) {
	first, err := GenerateQRCode("http://localhost:8002/t/TKT-AAAA", 256)
	require.NoError(t, err)
	second, err := GenerateQRCode("http://localhost:8002/t/TKT-BBBB", 256)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
