package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	content := "jpeg bytes"
	written, sum, err := store.Put(context.Background(), "obj.jpg", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)

	want := sha256.Sum256([]byte(content))
	assert.Equal(t, hex.EncodeToString(want[:]), sum)

	rc, err := store.Open(context.Background(), "obj.jpg")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestLocalStoreDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Put(context.Background(), "gone.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), "gone.pdf"))

	_, err = store.Open(context.Background(), "gone.pdf")
	assert.Error(t, err)
}

func TestLocalStoreRejectsPathEscape(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.txt", "a/b.txt", "/etc/passwd"} {
		_, _, err := store.Put(context.Background(), name, strings.NewReader("x"))
		assert.Error(t, err, "name %q", name)
	}
}

func TestNewObjectName(t *testing.T) {
	name := NewObjectName("Hallway.JPG")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.Len(t, name, 26+len(".jpg"))

	assert.NotEqual(t, NewObjectName("a.png"), NewObjectName("a.png"))
}
