package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscraft/optibulk/pkg/s3storage"
)

// mockS3Client — мок ClientInterface для тестов без реального хранилища.
type mockS3Client struct {
	objects map[string][]byte
}

func (m *mockS3Client) ListFiles(_ context.Context, _ string) ([]s3storage.StoredObject, error) {
	var out []s3storage.StoredObject
	for key, data := range m.objects {
		out = append(out, s3storage.StoredObject{Key: key, Size: int64(len(data))})
	}
	return out, nil
}

func (m *mockS3Client) DownloadFile(_ context.Context, key string) ([]byte, error) {
	return m.objects[key], nil
}

func TestS3SourceLoad(t *testing.T) {
	client := &mockS3Client{objects: map[string][]byte{
		"sku-123/Black/IMG_001.jpg": []byte("a"),
		"sku-123/Brown/IMG_002.jpg": []byte("b"),
		"sku-123/manifest.json":     []byte("x"),
	}}

	assets, err := NewS3Source(client, "sku-123").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)

	names := map[string]bool{}
	for _, a := range assets {
		names[a.Name] = true
	}
	assert.True(t, names["Black_IMG_001.jpg"])
	assert.True(t, names["Brown_IMG_002.jpg"])
}

func TestS3SourceEmptyPrefix(t *testing.T) {
	client := &mockS3Client{objects: map[string][]byte{
		"sku-123/readme.md": []byte("x"),
	}}

	_, err := NewS3Source(client, "sku-123").Load(context.Background())
	assert.ErrorIs(t, err, ErrNoImages)
}
