// Package unicodefix replaces invisible joiner characters in script files with
// their escape sequences, so files survive tools which strip or mangle them.
package unicodefix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/runenames"

	"legacss/config"
)

// Escaper rewrites files in place.
type Escaper struct {
	log   *zap.Logger
	exts  []string
	runes []rune
	repl  *strings.Replacer
}

// NewEscaper prepares escaper for code points listed in configuration.
func NewEscaper(log *zap.Logger, cfg config.UnicodeConfig) (*Escaper, error) {
	if log == nil {
		log = zap.NewNop()
	}

	e := &Escaper{log: log.Named("unicode"), exts: cfg.Extensions}
	var pairs []string
	for _, s := range cfg.Escape {
		hex := strings.ToUpper(strings.TrimSpace(s))
		hex = strings.TrimPrefix(strings.TrimPrefix(hex, "U+"), "0X")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || v > 0x10FFFF {
			return nil, fmt.Errorf("bad code point %q", s)
		}
		r := rune(v)
		if slices.Contains(e.runes, r) {
			continue
		}
		e.runes = append(e.runes, r)
		pairs = append(pairs, string(r), EscapeSequence(r))
	}
	if len(e.runes) == 0 {
		return nil, fmt.Errorf("no code points to escape")
	}
	e.repl = strings.NewReplacer(pairs...)
	return e, nil
}

// EscapeSequence returns script escape for r: \uXXXX for the basic plane and
// \u{XXXXX} above it.
func EscapeSequence(r rune) string {
	if r > 0xFFFF {
		return fmt.Sprintf(`\u{%X}`, r)
	}
	return fmt.Sprintf(`\u%04X`, r)
}

// Escape returns s with all configured code points escaped and per code point
// counts of replacements.
func (e *Escaper) Escape(s string) (string, map[rune]int) {
	var counts map[rune]int
	for _, r := range e.runes {
		if n := strings.Count(s, string(r)); n > 0 {
			if counts == nil {
				counts = make(map[rune]int)
			}
			counts[r] = n
		}
	}
	if counts == nil {
		return s, nil
	}
	return e.repl.Replace(s), counts
}

// File escapes content of a single file, rewriting it only when something has
// changed.
func (e *Escaper) File(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	out, counts := e.Escape(string(data))
	if counts == nil {
		e.log.Info("Nothing to escape", zap.String("file", path))
		return false, nil
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, err
	}

	fields := []zap.Field{zap.String("file", path)}
	for _, r := range e.runes {
		if n, ok := counts[r]; ok {
			fields = append(fields, zap.Int(fmt.Sprintf("U+%04X %s", r, runenames.Name(r)), n))
		}
	}
	e.log.Info("Escaped unicode", fields...)
	return true, nil
}

// Dir processes files with matching extensions directly in dir in natural
// name order. Errors with individual files do not stop processing and are
// returned combined.
func (e *Escaper) Dir(ctx context.Context, dir string) (changed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return natural.Less(entries[i].Name(), entries[j].Name())
	})

	for _, de := range entries {
		if cerr := ctx.Err(); cerr != nil {
			return changed, multierr.Append(err, cerr)
		}
		if !de.Type().IsRegular() || !slices.Contains(e.exts, filepath.Ext(de.Name())) {
			continue
		}
		ok, ferr := e.File(filepath.Join(dir, de.Name()))
		if ferr != nil {
			e.log.Warn("Unable to process file", zap.String("file", de.Name()), zap.Error(ferr))
			err = multierr.Append(err, fmt.Errorf("%s: %w", de.Name(), ferr))
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, err
}
