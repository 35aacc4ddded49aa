package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHash_And_CompareHash(t *testing.T) {
	hash, err := GetHash("admin-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "admin-secret", hash)

	assert.NoError(t, CompareHash(hash, "admin-secret"))
	assert.Error(t, CompareHash(hash, "wrong-secret"))
}

func TestCompareHash_InvalidHash(t *testing.T) {
	assert.Error(t, CompareHash("not-a-bcrypt-hash", "anything"))
}
