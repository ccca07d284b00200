package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/vrnd369/compressing/internal/domain"
)

// ErrEmptyArchive reports a batch with no successful outputs to package.
var ErrEmptyArchive = errors.New("no successful outputs to archive")

// deflateLevel balances archive size against packing speed. Image payloads
// are already compressed, so higher levels buy little.
const deflateLevel = 6

// Build packages every successful result into a single zip archive, in
// report order. Failed results are skipped. Entry names are kept unique by
// appending -1, -2, ... before the extension, first name wins.
func Build(report domain.BatchReport) ([]byte, error) {
	total := 0
	for _, res := range report.Results {
		if res.Success {
			total++
		}
	}
	if total == 0 {
		return nil, ErrEmptyArchive
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, deflateLevel)
	})

	seen := make(map[string]struct{}, total)
	modified := time.Now()
	for _, res := range report.Results {
		if !res.Success {
			continue
		}

		name := uniqueEntryName(seen, res.OutputName)
		seen[name] = struct{}{}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := w.Write(res.Output); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func uniqueEntryName(seen map[string]struct{}, name string) string {
	if _, taken := seen[name]; !taken {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, taken := seen[candidate]; !taken {
			return candidate
		}
	}
}
