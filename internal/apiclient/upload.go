package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"sharetome/internal/model"
)

// UploadFile is a single file streamed to the backend's /upload endpoint.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProgressFunc receives the number of bytes handed to the transport so far.
// It is called from the goroutine that writes the request body.
type ProgressFunc func(loaded, total int64)

type uploadResponse struct {
	FilePath string `json:"filePath"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload streams f as multipart form field "file" and returns the backend path
// the file was stored under.
func (c *Client) Upload(ctx context.Context, sess *model.Session, f UploadFile, progress ProgressFunc) (string, error) {
	if sess == nil || sess.Email == "" {
		return "", ErrUnauthenticated
	}
	if f.Body == nil {
		return "", errors.New("upload body is nil")
	}

	pr, pw := io.Pipe()
	defer pr.Close()

	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, &progressReader{r: f.Body, total: f.Size, fn: progress}); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	var out uploadResponse
	err := c.Request(ctx, sess, "/upload", RequestOptions{
		Method: http.MethodPost,
		Body:   pr,
		Header: http.Header{"Content-Type": {mw.FormDataContentType()}},
	}, &out)
	if err != nil {
		return "", err
	}
	if out.FilePath == "" {
		return "", &InvalidResponseError{Err: errors.New("missing filePath")}
	}
	return out.FilePath, nil
}

type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.fn != nil {
			p.fn(p.loaded, p.total)
		}
	}
	return n, err
}
