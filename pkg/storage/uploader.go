package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/lexcaraig/wheelbase-business/pkg/backend"
)

// Uploader sends a file payload to the object-storage collaborator and
// returns the public URL it was stored under.
type Uploader interface {
	Upload(ctx context.Context, token string, req *UploadRequest) (string, error)
}

type UploadRequest struct {
	Folder      string
	Filename    string
	ContentType string
	Data        []byte
}

// functionUploader uploads through the backend's upload function, which
// accepts base64 payloads and writes to the CDN bucket behind it.
type functionUploader struct {
	client   *backend.Client
	function string
}

func NewFunctionUploader(client *backend.Client) Uploader {
	return &functionUploader{
		client:   client,
		function: "upload-to-r2",
	}
}

func (u *functionUploader) Upload(ctx context.Context, token string, req *UploadRequest) (string, error) {
	if len(req.Data) == 0 {
		return "", fmt.Errorf("empty upload payload")
	}

	filename := req.Filename
	if filename == "" {
		filename = fmt.Sprintf("upload_%d", time.Now().UnixMilli())
	}

	body := map[string]interface{}{
		"folder":      req.Folder,
		"filename":    filename,
		"contentType": req.ContentType,
		"base64Data":  base64.StdEncoding.EncodeToString(req.Data),
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := u.client.CallWithAuth(ctx, u.function, token, body, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload returned no url")
	}
	return out.URL, nil
}
