package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	// ErrNotArchive is returned when no archive format accepts the input.
	ErrNotArchive = errors.New("not an archive")
	// ErrNoDocument is returned for archives without a document entry.
	ErrNoDocument = errors.New("archive contains no document")
	// ErrTooLarge is returned when decompressed content exceeds the limit.
	ErrTooLarge = errors.New("decompressed content too large")
)

// DefaultMaxSize bounds decompressed content.
const DefaultMaxSize = 64 << 20

// Kind names the container a document was found in.
type Kind string

const (
	KindPlain Kind = "plain"
	KindZip   Kind = "zip"
	KindGzip  Kind = "gzip"
	KindZstd  Kind = "zstd"
)

// Result is a decoded document.
type Result struct {
	HTML    string
	Kind    Kind
	Entry   string
	Charset string
	Inlined int
}

// Archived reports whether the document came out of an archive.
func (r Result) Archived() bool {
	return r.Kind != KindPlain
}

// Decoder turns raw bytes into document text. Archives are recognized by
// trying to decode them, not by signature.
type Decoder struct {
	logger  *zap.Logger
	maxSize int64
}

// NewDecoder creates a decoder. maxSize <= 0 uses DefaultMaxSize.
func NewDecoder(logger *zap.Logger, maxSize int64) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Decoder{logger: logger, maxSize: maxSize}
}

// Decode tries the archive formats and falls back to decoding raw as
// text. Archive failures are never returned; only cancellation is.
func (d *Decoder) Decode(ctx context.Context, raw []byte) (Result, error) {
	res, err := d.DecodeArchive(ctx, raw)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if !errors.Is(err, ErrNotArchive) {
		d.logger.Debug("Archive decode failed, decoding as text", zap.Error(err))
	}
	text, cs := DecodeText(raw)
	return Result{HTML: text, Kind: KindPlain, Charset: cs}, nil
}

// DecodeArchive decodes raw as a zip, gzip or zstd archive. It returns
// ErrNotArchive when no format accepts the input.
func (d *Decoder) DecodeArchive(ctx context.Context, raw []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw))); err == nil {
		files, err := d.readZip(ctx, zr)
		if err != nil {
			return Result{}, fmt.Errorf("zip: %w", err)
		}
		return d.fromBundle(files, KindZip)
	}

	if gr, err := gzip.NewReader(bytes.NewReader(raw)); err == nil {
		data, err := d.readAll(gr)
		gr.Close()
		if err != nil {
			return Result{}, fmt.Errorf("gzip: %w", err)
		}
		return d.fromPayload(ctx, data, KindGzip)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(d.maxSize)), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return Result{}, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()
	if data, err := dec.DecodeAll(raw, nil); err == nil && len(raw) > 0 {
		if int64(len(data)) > d.maxSize {
			return Result{}, fmt.Errorf("zstd: %w", ErrTooLarge)
		}
		return d.fromPayload(ctx, data, KindZstd)
	}

	return Result{}, ErrNotArchive
}

// fromPayload handles a decompressed stream: a tarball of files or a
// single document.
func (d *Decoder) fromPayload(ctx context.Context, data []byte, kind Kind) (Result, error) {
	if files, ok := d.readTar(ctx, data); ok {
		return d.fromBundle(files, kind)
	}
	text, cs := DecodeText(data)
	return Result{HTML: text, Kind: kind, Charset: cs}, nil
}

func (d *Decoder) fromBundle(files bundle, kind Kind) (Result, error) {
	entry, ok := files.entry()
	if !ok {
		return Result{}, ErrNoDocument
	}
	text, cs := DecodeText(files[entry])
	res := Result{HTML: text, Kind: kind, Entry: entry, Charset: cs}

	if len(files) > 1 {
		doc, err := html.Parse(strings.NewReader(text))
		if err == nil {
			if res.Inlined = files.inline(doc, entry); res.Inlined > 0 {
				var sb strings.Builder
				if err := html.Render(&sb, doc); err == nil {
					res.HTML = sb.String()
				}
			}
		}
	}

	d.logger.Debug("Archive decoded",
		zap.String("kind", string(kind)),
		zap.String("entry", entry),
		zap.Int("files", len(files)),
		zap.Int("inlined", res.Inlined),
	)
	return res, nil
}

func (d *Decoder) readZip(ctx context.Context, zr *zip.Reader) (bundle, error) {
	files := bundle{}
	var total int64
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := d.readLimited(rc, d.maxSize-total)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		total += int64(len(data))
		files.add(f.Name, data)
	}
	return files, nil
}

// readTar reads data as a tar archive. It reports false when data is not
// a tarball with at least one regular file.
func (d *Decoder) readTar(ctx context.Context, data []byte) (bundle, bool) {
	tr := tar.NewReader(bytes.NewReader(data))
	files := bundle{}
	for {
		if ctx.Err() != nil {
			return nil, false
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		body, err := io.ReadAll(tr)
		if err != nil {
			return nil, false
		}
		files.add(hdr.Name, body)
	}
	return files, len(files) > 0
}

func (d *Decoder) readAll(r io.Reader) ([]byte, error) {
	return d.readLimited(r, d.maxSize)
}

func (d *Decoder) readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
