package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/ds124wfegd/negative-web/internal/entity"
)

const defaultArtifactName = "negative.png"

// Negate uploads file to the proxy under the multipart field "file" and
// returns the binary reply. A non-2xx reply becomes an *entity.ProxyError
// carrying the body text.
func (c *Client) Negate(ctx context.Context, file *entity.SelectedFile) (*entity.Blob, error) {
	if file == nil {
		return nil, entity.ErrNoFileSelected
	}

	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.negPath), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.maxBody > 0 {
		reader = io.LimitReader(resp.Body, c.maxBody+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read proxy response: %w", err)
	}
	if c.maxBody > 0 && int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: limit %d bytes", entity.ErrResponseTooLarge, c.maxBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &entity.ProxyError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	blob := &entity.Blob{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition")),
	}
	if blob.ContentType == "" {
		blob.ContentType = http.DetectContentType(data)
	}
	return blob, nil
}

func multipartBody(file *entity.SelectedFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Filename)))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return defaultArtifactName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return defaultArtifactName
	}
	return params["filename"]
}
