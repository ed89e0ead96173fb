package device

import (
	"fmt"
	"image"
	"os"
	"strings"
)

type fileBackend struct{}

func init() {
	Register(fileBackend{})
}

func (fileBackend) Schemes() []string {
	return []string{"file"}
}

func (fileBackend) Open(target string) (Device, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: empty device path", ErrDevice)
	}
	return &fileDevice{path: target}, nil
}

// fileDevice talks ESC/POS to a character device. The device file is opened
// per call, matching line-printer semantics where the open itself fails fast
// when the printer is gone.
type fileDevice struct {
	path string
}

func (d *fileDevice) write(data []byte) error {
	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDevice, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrDevice, err)
	}
	return nil
}

func (d *fileDevice) Text(text string) error {
	return d.write([]byte(text))
}

func (d *fileDevice) Newline(count int) error {
	if count <= 0 {
		return nil
	}
	return d.write([]byte(strings.Repeat("\n", count)))
}

func (d *fileDevice) Image(img image.Image, center bool) error {
	data := []byte{}
	if center {
		data = append(data, escAlignCenter...)
	}
	data = append(data, rasterize(img)...)
	if center {
		data = append(data, escAlignLeft...)
	}
	return d.write(data)
}
