package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	defaultUploadName = "image.jpg"
	defaultUploadType = "image/jpeg"
)

// ImageSource is a file to upload: either in-memory bytes (Data) or a file
// on the local filesystem (Path). Filename and ContentType are optional.
type ImageSource struct {
	Path        string
	Data        []byte
	Filename    string
	ContentType string
}

// UploadImage posts src as multipart form data and returns the server's
// relative URL of the stored file, for example "/uploads/images/x.jpg".
func (c *Client) UploadImage(ctx context.Context, src ImageSource) (string, error) {
	var (
		content     io.Reader
		filename    = src.Filename
		contentType = src.ContentType
	)

	switch {
	case src.Data != nil:
		content = bytes.NewReader(src.Data)
		if filename == "" {
			filename = defaultUploadName
		}
		if contentType == "" {
			contentType = defaultUploadType
		}
	case src.Path != "":
		f, err := os.Open(src.Path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", src.Path, err)
		}
		defer f.Close()
		content = f
		if filename == "" {
			filename = filepath.Base(src.Path)
		}
		if contentType == "" {
			contentType = typeByExtension(filename)
		}
	default:
		return "", errors.New("image source has neither data nor path")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	raw, err := c.send(req)
	if err != nil {
		return "", err
	}

	var result struct {
		File struct {
			URL string `json:"url"`
		} `json:"file"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.File.URL == "" {
		return "", errors.New("upload response carries no file url")
	}
	return result.File.URL, nil
}

// DeleteUpload removes a stored upload. ref may be the URL UploadImage
// returned or a bare file name.
func (c *Client) DeleteUpload(ctx context.Context, ref string) error {
	name := path.Base(strings.TrimSpace(ref))
	if name == "" || name == "." || name == "/" {
		return errors.New("upload url names no file")
	}
	_, err := c.do(ctx, http.MethodDelete, "/upload/"+url.PathEscape(name), nil)
	return err
}

func typeByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return defaultUploadType
	}
	if t, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil {
		return t
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}
