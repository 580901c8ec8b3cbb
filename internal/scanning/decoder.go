package scanning

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode is returned when a frame contains no readable QR code
var ErrNoCode = errors.New("no qr code found")

// Decoder extracts QR code text from a frame
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// ZXingDecoder decodes QR codes with gozxing
type ZXingDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewZXingDecoder creates a decoder that tries harder on low-contrast camera frames
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the text of the first QR code found in img
func (d *ZXingDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarizing frame: %w", err)
	}

	result, err := zxingqr.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return "", ErrNoCode
		}
		return "", fmt.Errorf("decoding qr code: %w", err)
	}
	return result.GetText(), nil
}
