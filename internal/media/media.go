package media

import (
	"context"
	"io"
)

// FileUpload is a single file received from a client, ready to be pushed
// to the media host.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Uploader pushes binary media to an external host and returns a publicly
// reachable URL for it.
type Uploader interface {
	Upload(ctx context.Context, file *FileUpload) (string, error)
}
