package vdom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agentflare-ai/go-xmldom"
)

// Load parses an HVML document from an in-memory buffer, a file path, or a
// URL and returns its parsed element tree. The tokenizer and tree builder
// (go-xmldom) are external collaborators; Load is the one seam in this
// module where they are invoked directly.
func Load(ctx context.Context, source string) (Document, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return loadURL(ctx, source)
	case looksLikeMarkup(source):
		return loadBuffer([]byte(source))
	default:
		return loadPath(source)
	}
}

// LoadBuffer parses an in-memory HVML document buffer directly.
func LoadBuffer(buf []byte) (Document, error) {
	return loadBuffer(buf)
}

func loadBuffer(buf []byte) (Document, error) {
	dec := xmldom.NewDecoderFromBytes(buf)
	doc, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("vdom: decode buffer: %w", err)
	}
	return wrapDocument(doc), nil
}

func loadPath(path string) (Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vdom: read %s: %w", path, err)
	}
	return loadBuffer(buf)
}

func loadURL(ctx context.Context, url string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("vdom: build request for %s: %w", url, err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vdom: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vdom: read body of %s: %w", url, err)
	}
	return loadBuffer(buf)
}

func looksLikeMarkup(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "<")
}
