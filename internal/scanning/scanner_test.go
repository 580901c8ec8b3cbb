package scanning

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/ghttp"
	goqrcode "github.com/skip2/go-qrcode"

	"github.com/zombor/paydesk/internal/agent"
	"github.com/zombor/paydesk/internal/qrcode"
)

func TestScanning(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Scanning Suite")
}

func qrPNG(content string) []byte {
	data, err := goqrcode.Encode(content, goqrcode.Medium, 256)
	Expect(err).NotTo(HaveOccurred())
	return data
}

func qrImage(content string) image.Image {
	img, err := png.Decode(bytes.NewReader(qrPNG(content)))
	Expect(err).NotTo(HaveOccurred())
	return img
}

func blankImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

// scriptedSource replays frames then keeps returning the last one
type scriptedSource struct {
	mu     sync.Mutex
	frames []func() (image.Image, error)
	calls  int
}

func (s *scriptedSource) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	if idx >= len(s.frames) {
		idx = len(s.frames) - 1
	}
	s.calls++
	return s.frames[idx]()
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubDecoder struct {
	texts []string
	calls int
}

func (d *stubDecoder) Decode(img image.Image) (string, error) {
	if d.calls >= len(d.texts) {
		return "", ErrNoCode
	}
	text := d.texts[d.calls]
	d.calls++
	return text, nil
}

var _ = Describe("ZXingDecoder", func() {
	It("should decode a generated QR code", func() {
		text, err := NewZXingDecoder().Decode(qrImage("https://example.com/pay?x=1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("https://example.com/pay?x=1"))
	})

	It("should decode the composed agent download", func() {
		a := &agent.Agent{ID: "42", Name: "Jane Doe", Location: "Nairobi"}
		url := qrcode.AgentURL("http://localhost:8080", a)
		data, err := qrcode.Render(url, a)
		Expect(err).NotTo(HaveOccurred())
		img, err := png.Decode(bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())

		text, err := NewZXingDecoder().Decode(img)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(url))
	})

	It("should return ErrNoCode for a blank frame", func() {
		_, err := NewZXingDecoder().Decode(blankImage())
		Expect(errors.Is(err, ErrNoCode)).To(BeTrue())
	})
})

var _ = Describe("Scanner", func() {
	var scanner *Scanner

	BeforeEach(func() {
		scanner = NewScanner(5 * time.Millisecond)
	})

	Describe("ScanUpload", func() {
		It("should decode a PNG upload and remember it", func() {
			result, err := scanner.ScanUpload(qrPNG("hello"), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal("hello"))

			last, ok := scanner.Last()
			Expect(ok).To(BeTrue())
			Expect(last.Text).To(Equal("hello"))
		})

		It("should reject data that is not an image", func() {
			_, err := scanner.ScanUpload([]byte("plain text"), "text/plain")
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})

		It("should reject empty uploads", func() {
			_, err := scanner.ScanUpload(nil, "image/png")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Last", func() {
		It("should report nothing before the first decode", func() {
			_, ok := scanner.Last()
			Expect(ok).To(BeFalse())
		})

		It("should overwrite earlier results", func() {
			scanner = NewScannerWithDecoder(&stubDecoder{texts: []string{"first", "second"}}, time.Millisecond)
			_, err := scanner.ScanImage(blankImage())
			Expect(err).NotTo(HaveOccurred())
			_, err = scanner.ScanImage(blankImage())
			Expect(err).NotTo(HaveOccurred())

			last, _ := scanner.Last()
			Expect(last.Text).To(Equal("second"))
		})

		It("should keep the previous result when a frame has no code", func() {
			_, err := scanner.ScanImage(qrImage("keep me"))
			Expect(err).NotTo(HaveOccurred())
			_, err = scanner.ScanImage(blankImage())
			Expect(errors.Is(err, ErrNoCode)).To(BeTrue())

			last, _ := scanner.Last()
			Expect(last.Text).To(Equal("keep me"))
		})
	})

	Describe("Run", func() {
		It("should keep polling through errors until a code is decoded", func() {
			src := &scriptedSource{frames: []func() (image.Image, error){
				func() (image.Image, error) { return nil, errors.New("camera busy") },
				func() (image.Image, error) { return blankImage(), nil },
				func() (image.Image, error) { return qrImage("from camera"), nil },
			}}

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- scanner.Run(ctx, src) }()

			Eventually(func() string {
				last, _ := scanner.Last()
				return last.Text
			}, 5*time.Second).Should(Equal("from camera"))
			Expect(src.Calls()).To(BeNumerically(">=", 3))

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})

		It("should log frames without a code at debug level", func() {
			logs := gbytes.NewBuffer()
			previous := slog.Default()
			slog.SetDefault(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
			DeferCleanup(slog.SetDefault, previous)

			src := &scriptedSource{frames: []func() (image.Image, error){
				func() (image.Image, error) { return blankImage(), nil },
				func() (image.Image, error) { return qrImage("after a miss"), nil },
			}}

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- scanner.Run(ctx, src) }()

			Eventually(func() string {
				last, _ := scanner.Last()
				return last.Text
			}, 5*time.Second).Should(Equal("after a miss"))
			cancel()
			Eventually(done).Should(Receive())

			Expect(logs).To(gbytes.Say("level=DEBUG msg=\"No QR code in frame\""))
		})
	})
})

var _ = Describe("SnapshotSource", func() {
	var server *ghttp.Server

	BeforeEach(func() {
		server = ghttp.NewServer()
	})

	AfterEach(func() {
		server.Close()
	})

	It("should fetch and decode a snapshot", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodGet, "/shot.png"),
			ghttp.RespondWith(http.StatusOK, qrPNG("snap"), http.Header{"Content-Type": []string{"image/png"}}),
		))

		img, err := NewSnapshotSource(server.URL() + "/shot.png").Frame(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(256))
	})

	It("should surface camera errors", func() {
		server.AppendHandlers(ghttp.RespondWith(http.StatusServiceUnavailable, ""))

		_, err := NewSnapshotSource(server.URL() + "/shot.png").Frame(context.Background())
		Expect(err).To(MatchError(ContainSubstring("status 503")))
	})
})

var _ = Describe("decodeFrame", func() {
	It("should detect HEIC by magic bytes", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		Expect(isHEICFormat(data)).To(BeTrue())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})

	It("should detect PDFs by magic bytes", func() {
		Expect(isPDF([]byte("%PDF-1.4"), "")).To(BeTrue())
		Expect(isPDF([]byte{0x89, 'P', 'N', 'G'}, "image/png")).To(BeFalse())
	})

	It("should decode plain PNG frames", func() {
		var buf bytes.Buffer
		img := image.NewGray(image.Rect(0, 0, 4, 4))
		img.Set(1, 1, color.White)
		Expect(png.Encode(&buf, img)).To(Succeed())

		decoded, err := decodeFrame(buf.Bytes(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Bounds().Dx()).To(Equal(4))
	})
})
