package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

func TestBackend_UploadDownloadDelete(t *testing.T) {
	b := New()
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "media/ab/cd", "image/png", strings.NewReader("png-bytes")))

	rc, err := b.Download(ctx, "media/ab/cd")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(data))

	mimeType, ok := b.MimeType("media/ab/cd")
	assert.True(t, ok)
	assert.Equal(t, "image/png", mimeType)

	require.NoError(t, b.Delete(ctx, "media/ab/cd"))
	_, err = b.Download(ctx, "media/ab/cd")
	assert.ErrorIs(t, err, hiddencontent.ErrObjectNotFound)

	assert.NoError(t, b.Delete(ctx, "media/ab/cd"))
}

func TestBackend_Overwrite(t *testing.T) {
	b := New()
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "k", "text/plain", strings.NewReader("one")))
	require.NoError(t, b.Upload(ctx, "k", "text/plain", strings.NewReader("two")))

	rc, err := b.Download(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}
