// Package slides derives storage locations for slide images and brokers
// presigned URLs for them. Image bytes never pass through the control
// plane; clients talk to the object store directly.
package slides

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// ContentType of every slide object.
	ContentType = "image/webp"

	slideExt = ".webp"
)

// Presigner issues time-limited pre-authorized URLs for single storage
// operations on a key.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
}

// Resolver maps (session token, slide index) pairs to object keys and
// delegates URL signing to the object storage gateway.
type Resolver struct {
	presigner Presigner
}

func NewResolver(p Presigner) *Resolver {
	return &Resolver{presigner: p}
}

// ObjectKey derives the storage key for one slide. The token is hashed
// first: storage paths end up in logs and caches, and a hash cannot be
// reversed into the bearer capability. Keys stay stable for the life of
// the session since the token never rotates.
func ObjectKey(token string, index uint64) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("slides/%s/%d%s", hex.EncodeToString(sum[:]), index, slideExt)
}

// UploadURL returns a presigned PUT URL for the slide at index.
func (r *Resolver) UploadURL(ctx context.Context, token string, index uint64) (string, error) {
	return r.presigner.PresignPut(ctx, ObjectKey(token, index), ContentType)
}

// DownloadURL returns a presigned GET URL for the slide at index.
func (r *Resolver) DownloadURL(ctx context.Context, token string, index uint64) (string, error) {
	return r.presigner.PresignGet(ctx, ObjectKey(token, index))
}
