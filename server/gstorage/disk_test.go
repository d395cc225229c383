package gstorage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewDiskStore(t.TempDir())
	require.Nil(t, err)

	require.Nil(t, store.Upload(ctx, "documents/1/deck.pdf", "application/pdf", strings.NewReader("%PDF-1.4")))

	rc, err := store.NewReader(ctx, "documents/1/deck.pdf")
	require.Nil(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.Nil(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))

	require.Nil(t, store.Delete(ctx, "documents/1/deck.pdf"))
	assert.ErrorIs(t, store.Delete(ctx, "documents/1/deck.pdf"), ErrObjectNotExist)

	_, err = store.NewReader(ctx, "documents/1/deck.pdf")
	assert.ErrorIs(t, err, ErrObjectNotExist)
}

func TestDiskStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.Nil(t, err)

	err = store.Upload(context.Background(), "../outside.txt", "text/plain", strings.NewReader("x"))
	assert.NotNil(t, err)
}
