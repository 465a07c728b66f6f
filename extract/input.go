package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotStylesheet is returned when input is recognized as binary file.
var ErrNotStylesheet = errors.New("input is not a stylesheet")

var (
	boms = [][]byte{
		{0xEF, 0xBB, 0xBF},
		{0xFE, 0xFF},
		{0xFF, 0xFE},
	}
	// only exact form is recognized, same as browsers do
	charsetRule = regexp.MustCompile(`^@charset "([^"]*)";`)
)

// readStylesheet loads input converting it to UTF-8. Byte order mark takes
// precedence over @charset rule, input without either is expected to be UTF-8
// already. Returned label names detected encoding for logging.
func readStylesheet(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return decodeStylesheet(data)
}

func decodeStylesheet(data []byte) ([]byte, string, error) {
	for _, bom := range boms {
		if !bytes.HasPrefix(data, bom) {
			continue
		}
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		if err != nil {
			return nil, "", fmt.Errorf("unable to decode input: %w", err)
		}
		label := "utf-8"
		if len(bom) == 2 {
			label = "utf-16"
		}
		return out, label, nil
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return nil, "", fmt.Errorf("%w: looks like %s (%s)", ErrNotStylesheet, kind.MIME.Value, kind.Extension)
	}

	m := charsetRule.FindSubmatch(data)
	if m == nil {
		return data, "utf-8", nil
	}
	label := strings.ToLower(strings.TrimSpace(string(m[1])))
	if label == "utf-8" || label == "utf8" {
		return data, label, nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode input: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode input: %w", err)
	}
	return out, label, nil
}
