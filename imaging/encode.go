package imaging

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register decoders
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	Quality  = 85
	MIMEType = "image/jpeg"
)

const (
	pngSignature = "\x89PNG\r\n\x1a\n"
	// signature, IHDR length and type, width, height, bit depth, color type
	pngHeaderLen   = 26
	pngGrayAlpha   = 4
	pngColorTypeAt = 25
)

// Decode reads any registered image format and returns the format name.
// Gray+alpha PNGs come back as opaque gray, their alpha channel dropped.
func Decode(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(pngHeaderLen)
	grayAlpha := len(head) == pngHeaderLen &&
		string(head[:len(pngSignature)]) == pngSignature &&
		head[pngColorTypeAt] == pngGrayAlpha

	img, format, err := image.Decode(br)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if grayAlpha {
		img = dropAlpha(img)
	}
	return img, format, nil
}

// dropAlpha keeps the luminance of a decoded gray+alpha PNG. The png
// package stores those samples unpremultiplied in NRGBA/NRGBA64.
func dropAlpha(img image.Image) image.Image {
	bounds := img.Bounds()
	switch src := img.(type) {
	case *image.NRGBA:
		dst := image.NewGray(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				dst.SetGray(x, y, color.Gray{Y: src.NRGBAAt(x, y).R})
			}
		}
		return dst
	case *image.NRGBA64:
		dst := image.NewGray16(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				dst.SetGray16(x, y, color.Gray16{Y: src.NRGBA64At(x, y).R})
			}
		}
		return dst
	}
	return img
}

// Flatten composites images with transparency over opaque white.
func Flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

// EncodeJPEG flattens img and encodes it as JPEG at Quality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, Flatten(img), &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func EncodeBase64(img image.Image) (string, error) {
	b, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
