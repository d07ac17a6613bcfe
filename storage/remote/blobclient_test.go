package remote_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/storage/remote"
)

func TestBlobClient_PutThenGet(t *testing.T) {
	store := map[string][]byte{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := r.URL.Path[len("/blobs/"):]
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			store[hash] = body
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			content, ok := store[hash]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(content)
		}
	}))
	defer server.Close()

	client := remote.NewBlobClient(server.URL, nil)
	require.NoError(t, client.Put(t.Context(), "abc123", []byte("hello")))

	got, err := client.Get(t.Context(), "abc123")
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("hello"), got))
}

func TestBlobClient_GetMissingReturnsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := remote.NewBlobClient(server.URL, nil)
	_, err := client.Get(t.Context(), "missing")
	assert.Error(t, err)
}
