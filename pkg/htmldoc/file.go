package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/net/html/charset"
)

// LoadFile loads a UTF-8 HTML file.
func (d *Document) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return d.Load(string(data))
}

// LoadReader loads HTML from r, converting it to UTF-8. The encoding comes
// from contentType when it names a charset, otherwise it is sniffed from
// the content.
func (d *Document) LoadReader(r io.Reader, contentType string) error {
	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return fmt.Errorf("failed to detect charset: %w", err)
	}

	data, err := io.ReadAll(utf8)
	if err != nil {
		return fmt.Errorf("failed to read HTML: %w", err)
	}
	return d.Load(string(data))
}

// SaveFile atomically writes the saved document to path and returns the
// number of bytes written.
func (d *Document) SaveFile(path string) (int, error) {
	out, err := d.Save()
	if err != nil {
		return 0, err
	}

	if limit := d.cfg.MaxOutputSize; limit > 0 && len(out) > limit {
		return 0, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(out), limit)
	}

	if err := atomic.WriteFile(path, strings.NewReader(out)); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() != int64(len(out)) {
		return 0, fmt.Errorf("%w: wrote %d of %d bytes to %s", ErrSave, info.Size(), len(out), path)
	}

	d.log.Debugf("wrote %d bytes to %s", len(out), path)
	return len(out), nil
}
