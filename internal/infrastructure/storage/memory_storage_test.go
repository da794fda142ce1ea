package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prescriptionapp "github.com/emedico/backend/internal/application/prescription"
)

var (
	_ prescriptionapp.ImageStore = (*MemoryStore)(nil)
	_ prescriptionapp.ImageStore = (*S3Store)(nil)
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "prescriptions/s1/rx.png", []byte("png"), "image/png"))

	exists, err := s.Exists(ctx, "prescriptions/s1/rx.png")
	require.NoError(t, err)
	assert.True(t, exists)

	url, expiresAt, err := s.PreviewURL(ctx, "prescriptions/s1/rx.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cG5n", url)
	assert.True(t, expiresAt.After(time.Now()))

	require.NoError(t, s.Delete(ctx, "prescriptions/s1/rx.png"))
	exists, err = s.Exists(ctx, "prescriptions/s1/rx.png")
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = s.PreviewURL(ctx, "prescriptions/s1/rx.png", time.Minute)
	assert.Error(t, err)

	assert.Error(t, s.Put(ctx, "", nil, "image/png"))
	assert.Error(t, s.Delete(ctx, ""))
}

func TestMemoryStore_UploadCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", data, "image/gif"))
	data[0] = 'z'

	url, _, err := s.PreviewURL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "data:image/gif;base64,YWJj", url)
}
