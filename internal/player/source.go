package player

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxRemoteSize bounds how much of a remote source is buffered in memory.
const maxRemoteSize = 256 << 20

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
)

var errSourceTooLarge = errors.New("source exceeds size limit")

// source is an opened, seekable audio source plus its detected container.
type source struct {
	io.ReadSeekCloser
	ext string
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }

// openSource resolves uri into a seekable reader. Local paths and file://
// URIs are opened directly; http(s) bodies and data: URIs are buffered.
func openSource(ctx context.Context, client *http.Client, uri string) (*source, error) {
	switch {
	case uri == "":
		return nil, errors.New("empty source")
	case strings.HasPrefix(uri, "data:"):
		return openData(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return openHTTP(ctx, client, uri)
	default:
		return openFile(strings.TrimPrefix(uri, "file://"))
	}
}

func openFile(p string) (*source, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return &source{ReadSeekCloser: f, ext: strings.ToLower(filepath.Ext(p))}, nil
}

func openHTTP(ctx context.Context, client *http.Client, uri string) (*source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxRemoteSize {
		return nil, errSourceTooLarge
	}

	ext := ""
	if u, err := url.Parse(uri); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if !isKnownExt(ext) {
		ext = extFromMIME(resp.Header.Get("Content-Type"))
	}
	return &source{ReadSeekCloser: nopCloser{bytes.NewReader(body)}, ext: ext}, nil
}

// openData decodes data:<mime>;base64,<payload> URIs as stored by the
// upload backend.
func openData(uri string) (*source, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, errors.New("data uri is not base64")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return &source{
		ReadSeekCloser: nopCloser{bytes.NewReader(raw)},
		ext:            extFromMIME(mediaType),
	}, nil
}

func isKnownExt(ext string) bool {
	return ext == extMP3 || ext == extFLAC || ext == extWAV
}

func extFromMIME(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mt {
	case "audio/mpeg", "audio/mp3", "audio/mpeg3":
		return extMP3
	case "audio/flac", "audio/x-flac":
		return extFLAC
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return extWAV
	default:
		return ""
	}
}
