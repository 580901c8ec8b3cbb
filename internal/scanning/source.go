package scanning

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"
)

// maxFrameSize caps a single snapshot download
const maxFrameSize = 20 << 20

// SnapshotSource reads frames from a camera exposing a still-image HTTP endpoint
type SnapshotSource struct {
	url    string
	client *http.Client
}

// NewSnapshotSource creates a SnapshotSource for the given URL
func NewSnapshotSource(url string) *SnapshotSource {
	return &SnapshotSource{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Frame fetches and decodes one snapshot
func (s *SnapshotSource) Frame(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera error (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameSize))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return decodeFrame(data, resp.Header.Get("Content-Type"))
}
