package fileregistry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracewayhq/traceway/fileregistry"
)

func TestHash_IsStableSHA256Hex(t *testing.T) {
	h1 := fileregistry.Hash([]byte("hello"))
	h2 := fileregistry.Hash([]byte("hello"))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	h3 := fileregistry.Hash([]byte("world"))
	assert.NotEqual(t, h1, h3)
}
