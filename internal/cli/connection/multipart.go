package connection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"sort"
	"strings"
)

// FilePart is one file of a multipart request.
type FilePart struct {
	Field       string // form field name
	Name        string // file name sent to the server
	Content     io.Reader
	ContentType string // derived from Name when empty
}

// ProgressFunc receives the number of body bytes sent so far and the total.
type ProgressFunc func(sent, total int64)

// PostMultipart sends a multipart/form-data POST with the given fields and
// files. Files are sent in order; fields are sent first, sorted by name.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart, progress ProgressFunc) (*Response, error) {
	body, contentType, err := buildMultipart(fields, files)
	if err != nil {
		return nil, err
	}

	var reader io.Reader = body
	if progress != nil {
		reader = &progressReader{r: body, total: int64(body.Len()), fn: progress}
	}

	headers := http.Header{}
	headers.Set(HeaderContentType, contentType)
	return c.Do(ctx, http.MethodPost, path, reader, headers)
}

func buildMultipart(fields map[string]string, files []FilePart) (*bytes.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", setupError("write form field %s", err, k)
		}
	}

	for _, f := range files {
		if f.Content == nil {
			return nil, "", setupError("file %s has no content", nil, f.Name)
		}
		part, err := w.CreatePart(filePartHeader(f))
		if err != nil {
			return nil, "", setupError("create part for %s", err, f.Name)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", setupError("read %s", err, f.Name)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", setupError("finish multipart body", err)
	}
	return bytes.NewReader(buf.Bytes()), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(f FilePart) textproto.MIMEHeader {
	name := filepath.Base(f.Name)
	ct := f.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(name))
	}
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.Field), quoteEscaper.Replace(name)))
	h.Set("Content-Type", ct)
	return h
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}

func (p *progressReader) Size() int64 { return p.total }
