package gateway

import (
	"context"
	"io"
)

// Upload is a binary handed to the media host.
type Upload struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

// MediaStorage stores binaries and returns a durable URL for them.
type MediaStorage interface {
	Upload(ctx context.Context, file *Upload, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}
