package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryS3Client("http://localhost:8080/files")

	require.NoError(t, client.Upload(ctx, "outputs", "proj-1/log.txt", strings.NewReader("run log")))

	rc, err := client.Download(ctx, "outputs", "proj-1/log.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "run log", string(data))

	url, err := client.GetPresignedURL(ctx, "outputs", "proj-1/log.txt", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/outputs/proj-1/log.txt", url)

	require.NoError(t, client.Delete(ctx, "outputs", "proj-1/log.txt"))
	_, err = client.Download(ctx, "outputs", "proj-1/log.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestPinFileIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	client := NewIPFSClient()

	a, err := client.PinFile(ctx, strings.NewReader("dataset"))
	require.NoError(t, err)
	b, err := client.PinFile(ctx, strings.NewReader("dataset"))
	require.NoError(t, err)
	c, err := client.PinFile(ctx, strings.NewReader("other dataset"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "bafkrei"))
}
