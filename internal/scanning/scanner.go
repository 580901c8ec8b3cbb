package scanning

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the pause between camera frames
const DefaultInterval = 300 * time.Millisecond

// Result is the most recent successful decode
type Result struct {
	Text      string    `json:"text"`
	ScannedAt time.Time `json:"scanned_at"`
}

// FrameSource yields camera frames
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// Scanner decodes QR codes from frames and remembers the last result. Earlier results
// are overwritten; there is no history.
type Scanner struct {
	decoder  Decoder
	interval time.Duration
	now      func() time.Time

	mu   sync.RWMutex
	last *Result
}

// NewScanner creates a Scanner polling at interval with the gozxing decoder
func NewScanner(interval time.Duration) *Scanner {
	return NewScannerWithDecoder(NewZXingDecoder(), interval)
}

// NewScannerWithDecoder creates a Scanner with a custom decoder for testing
func NewScannerWithDecoder(decoder Decoder, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scanner{
		decoder:  decoder,
		interval: interval,
		now:      time.Now,
	}
}

// ScanImage decodes a single frame, storing the text on success
func (s *Scanner) ScanImage(img image.Image) (Result, error) {
	text, err := s.decoder.Decode(img)
	if err != nil {
		return Result{}, err
	}

	result := Result{Text: text, ScannedAt: s.now()}
	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()
	return result, nil
}

// ScanUpload decodes an uploaded frame of any supported format
func (s *Scanner) ScanUpload(data []byte, contentType string) (Result, error) {
	img, err := decodeFrame(data, contentType)
	if err != nil {
		return Result{}, fmt.Errorf("reading frame: %w", err)
	}
	return s.ScanImage(img)
}

// Last returns the most recent result, if any
func (s *Scanner) Last() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Run polls src until ctx is done. Frame and decode errors are logged and the loop
// carries on with the next frame.
func (s *Scanner) Run(ctx context.Context, src FrameSource) error {
	limiter := rate.NewLimiter(rate.Every(s.interval), 1)
	slog.Info("Scanner started", "interval", s.interval)

	for {
		if err := limiter.Wait(ctx); err != nil {
			slog.Info("Scanner stopped")
			return ctx.Err()
		}

		img, err := src.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Scanner stopped")
				return ctx.Err()
			}
			slog.Error("Failed to read camera frame", "error", err)
			continue
		}

		result, err := s.ScanImage(img)
		switch {
		case errors.Is(err, ErrNoCode):
			slog.Debug("No QR code in frame")
		case err != nil:
			slog.Error("Failed to decode frame", "error", err)
		default:
			slog.Info("QR code scanned", "text", result.Text)
		}
	}
}
