package qr

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"

	"github.com/satspoint/SatsPoint/internal/errors"
)

// Encode renders payload as a 256x256 PNG.
func Encode(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, 256)
}

// EncodeTerminal renders payload as a block-character QR for terminal
// display.
func EncodeTerminal(payload string) (string, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return code.ToSmallString(false), nil
}

// DecodeImage reads a QR code out of img. Large captures are downscaled
// before recognition.
func DecodeImage(img image.Image) (string, error) {
	if img.Bounds().Dx() > 1024 {
		img = resize.Resize(1024, 0, img, resize.Lanczos3)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", errors.New(errors.QrNotRecognizedError, err)
	}
	qrReader := zxqrcode.NewQRCodeReader()
	result, err := qrReader.Decode(bmp, nil)
	if err != nil {
		return "", errors.New(errors.QrNotRecognizedError, err)
	}
	return result.String(), nil
}

// DecodeFile reads a QR code from an image file on disk, the fallback
// path when no camera is available.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return "", errors.New(errors.QrNotRecognizedError, err)
	}
	return DecodeImage(img)
}
