package device

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func openFileDevice(t *testing.T) (Device, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printer.out")
	dev, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	return dev, path
}

func readBack(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read device file: %v", err)
	}
	return data
}

func TestOpen_SchemeResolution(t *testing.T) {
	if _, err := Open("file:///tmp/printer.out"); err != nil {
		t.Fatalf("Open(file scheme)=%v", err)
	}
	if _, err := Open("ipp://printer.local"); err == nil {
		t.Fatal("Open() accepted an unregistered scheme")
	}
	if _, err := Open(""); err == nil {
		t.Fatal("Open() accepted an empty target")
	}
}

func TestText_WritesVerbatim(t *testing.T) {
	dev, path := openFileDevice(t)
	if err := dev.Text("hello printer"); err != nil {
		t.Fatalf("Text()=%v", err)
	}
	if got := readBack(t, path); string(got) != "hello printer" {
		t.Fatalf("device file=%q, want %q", got, "hello printer")
	}
}

func TestNewline_Count(t *testing.T) {
	dev, path := openFileDevice(t)
	if err := dev.Newline(3); err != nil {
		t.Fatalf("Newline()=%v", err)
	}
	if err := dev.Newline(0); err != nil {
		t.Fatalf("Newline(0)=%v", err)
	}
	if got := readBack(t, path); string(got) != "\n\n\n" {
		t.Fatalf("device file=%q, want three newlines", got)
	}
}

func TestRasterize_Header(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 2))
	data := rasterize(img)

	want := append([]byte{}, gsRasterImage...)
	want = append(want, 2, 0, 2, 0) // 2 bytes per row, 2 rows
	if !bytes.Equal(data[:len(want)], want) {
		t.Fatalf("rasterize header=%v, want %v", data[:len(want)], want)
	}
	if len(data) != len(want)+4 {
		t.Fatalf("rasterize len=%d, want %d", len(data), len(want)+4)
	}
}

func TestRasterize_PixelPacking(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})    // dark: printed
	img.SetGray(7, 0, color.Gray{Y: 0x10}) // dark: printed
	img.SetGray(3, 0, color.Gray{Y: 0xF0}) // light: blank

	data := rasterize(img)
	row := data[len(gsRasterImage)+4:]
	if len(row) != 1 || row[0] != 0x81 {
		t.Fatalf("packed row=%#v, want [0x81]", row)
	}
}

func TestImage_CenteredWrapsAlignment(t *testing.T) {
	dev, path := openFileDevice(t)
	img := image.NewGray(image.Rect(0, 0, 8, 1))
	if err := dev.Image(img, true); err != nil {
		t.Fatalf("Image()=%v", err)
	}
	got := readBack(t, path)
	if !bytes.HasPrefix(got, escAlignCenter) || !bytes.HasSuffix(got, escAlignLeft) {
		t.Fatalf("centered image missing alignment wrap: %v", got)
	}
}

func TestWrite_FailureIsDeviceError(t *testing.T) {
	dev, err := Open(filepath.Join(t.TempDir(), "missing", "printer.out"))
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	if err := dev.Text("x"); !errors.Is(err, ErrDevice) {
		t.Fatalf("Text()=%v, want ErrDevice", err)
	}
}
