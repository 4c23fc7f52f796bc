package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresigner(t *testing.T, endpoint string) *S3Presigner {
	t.Helper()
	p, err := NewS3Presigner(context.Background(), Options{
		Region:          "us-east-1",
		Endpoint:        endpoint,
		Bucket:          "slides-test",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	})
	require.NoError(t, err)
	return p
}

func TestPresignGet(t *testing.T) {
	p := newTestPresigner(t, "")

	url, err := p.PresignGet(context.Background(), "slides/deadbeef/1.webp")
	require.NoError(t, err)

	assert.Contains(t, url, "slides-test")
	assert.Contains(t, url, "slides/deadbeef/1.webp")
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestPresignPut(t *testing.T) {
	p := newTestPresigner(t, "")

	url, err := p.PresignPut(context.Background(), "slides/deadbeef/1.webp", "image/webp")
	require.NoError(t, err)

	assert.Contains(t, url, "slides/deadbeef/1.webp")
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestPresignWithCustomEndpoint(t *testing.T) {
	p := newTestPresigner(t, "http://localhost:9000")

	url, err := p.PresignGet(context.Background(), "slides/deadbeef/1.webp")
	require.NoError(t, err)

	// Path-style addressing against the custom endpoint.
	assert.Contains(t, url, "http://localhost:9000/slides-test/")
}
