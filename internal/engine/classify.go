package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	humanize "github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/varalys/gitaudit/internal/types"
)

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 1024

var errNotRegular = errors.New("not a regular file")

// classifier gates live files by size and binary content before matching.
type classifier struct {
	fs           afero.Fs
	maxSize      int64
	reportBinary bool
}

// classify returns the full content of rel when it should be pattern
// matched. Otherwise it returns the gate finding, if one applies. An error
// means the file could not be inspected and is skipped.
func (c *classifier) classify(rel string, t Target) ([]byte, *types.Finding, error) {
	info, err := c.fs.Stat(rel)
	if err != nil {
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%s: %w", rel, errNotRegular)
	}
	if info.Size() > c.maxSize {
		return nil, &types.Finding{
			Category: types.CatLargeFile,
			Title:    "Large File Detected",
			Description: fmt.Sprintf("%s is %s, over the %s scan limit; its content was not scanned",
				rel, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(c.maxSize))),
			Severity: types.SevLow,
			File:     rel,
			Context:  t.Label(),
			Source:   types.SourceLabel,
		}, nil
	}

	f, err := c.fs.Open(rel)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	head = head[:n]
	if bytes.IndexByte(head, 0) >= 0 {
		if !c.reportBinary {
			return nil, nil, nil
		}
		return nil, &types.Finding{
			Category:    types.CatBinaryFile,
			Title:       "Binary File Detected",
			Description: fmt.Sprintf("%s looks binary (%s); its content was not scanned", rel, mimetype.Detect(head).String()),
			Severity:    types.SevLow,
			File:        rel,
			Context:     t.Label(),
			Source:      types.SourceLabel,
		}, nil
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return append(head, rest...), nil, nil
}
