// Package source turns a corpus URI into a corpus.Loader.
//
// Accepted URIs:
//
//	kjv.json, kjv.json.xz         JSON corpus
//	kjv.xml, kjv.xml.xz           Zefania XML
//	kjv.db, kjv.sqlite(3)[.xz]    SQLite corpus
//	file:///srv/bibles/kjv.json   local file URL
//	ftp://host/pub/kjv.json.xz    downloaded to the cache dir, then as above
//
// The format is detected from the file content and falls back to the
// extension.
package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/formats/jsoncorpus"
	sqlitecorpus "github.com/FocuswithJustin/JuniperSearch/internal/formats/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/formats/zefania"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/validation"
)

// Source loads a corpus from a URI. It implements corpus.Loader.
type Source struct {
	uri      string
	registry *books.Registry
	ftp      *ftpFetcher
}

// Option configures a Source.
type Option func(*Source)

// WithRegistry sets the registry used to normalize book metadata.
func WithRegistry(r *books.Registry) Option {
	return func(s *Source) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithFTP configures the ftp:// fetcher.
func WithFTP(opts FTPOptions) Option {
	return func(s *Source) {
		if opts.Timeout <= 0 {
			opts.Timeout = s.ftp.opts.Timeout
		}
		if opts.CacheDir == "" {
			opts.CacheDir = s.ftp.opts.CacheDir
		}
		if opts.User == "" {
			opts.User, opts.Password = "anonymous", "anonymous"
		}
		s.ftp.opts = opts
	}
}

// New validates uri and returns a Source for it. Nothing is read until Load.
func New(uri string, opts ...Option) (*Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, apperrors.NewValidation("corpus", "no corpus source configured")
	}
	s := &Source{
		uri:      uri,
		registry: books.Default(),
		ftp: &ftpFetcher{
			opts: FTPOptions{
				Timeout:  30 * time.Second,
				CacheDir: filepath.Join(os.TempDir(), "juniper-search"),
				User:     "anonymous",
				Password: "anonymous",
			},
			dial: dialFTP,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	u, err := url.Parse(uri)
	if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "ftp", "file":
		default:
			return nil, apperrors.NewUnsupported("corpus scheme", u.Scheme)
		}
	}
	return s, nil
}

// URI returns the source URI with any password removed.
func (s *Source) URI() string {
	if u, err := url.Parse(s.uri); err == nil && u.User != nil {
		return u.Redacted()
	}
	return s.uri
}

// Load fetches and decodes the corpus, then normalizes book metadata.
// Every failure is a *errors.CorpusError.
func (s *Source) Load(ctx context.Context) (*corpus.Corpus, error) {
	start := time.Now()
	c, err := s.load(ctx)
	if err != nil {
		logging.Error("corpus load failed", "source", s.URI(), "error", err)
		return nil, apperrors.NewCorpus(s.URI(), err)
	}
	corpus.Normalize(c, s.registry)
	logging.CorpusLoad(s.URI(), len(c.Books), c.VerseCount(), time.Since(start))
	return c, nil
}

func (s *Source) load(ctx context.Context) (*corpus.Corpus, error) {
	path, err := s.localPath(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(ctx, path)
}

func (s *Source) localPath(ctx context.Context) (string, error) {
	u, err := url.Parse(s.uri)
	if err != nil || len(u.Scheme) <= 1 {
		// Plain paths, including Windows drive letters.
		return s.uri, nil
	}
	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path), nil
	case "ftp":
		return s.ftp.Fetch(ctx, u)
	}
	return "", apperrors.NewUnsupported("corpus scheme", u.Scheme)
}

// LoadFile decodes the corpus file at path without normalizing it.
func LoadFile(ctx context.Context, path string) (*corpus.Corpus, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	defer f.Close()

	ft, err := validation.DetectFileType(f, path)
	if err != nil {
		return nil, apperrors.NewParse("corpus", path, err.Error())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.NewIO("seek", path, err)
	}

	switch ft {
	case validation.FileTypeSQLite:
		return sqlitecorpus.LoadFile(ctx, path)
	case validation.FileTypeXZ:
		return loadXZ(ctx, f, path)
	}
	return decode(ft, f, path)
}

// decode handles the stream formats.
func decode(ft validation.FileType, r io.Reader, name string) (*corpus.Corpus, error) {
	switch ft {
	case validation.FileTypeJSON:
		return jsoncorpus.Load(r)
	case validation.FileTypeXML:
		return zefania.Load(r)
	}
	return nil, apperrors.NewUnsupported("corpus format", fmt.Sprintf("cannot determine format of %s", filepath.Base(name)))
}

// loadXZ decompresses f. SQLite payloads are unpacked to a temporary file
// since the driver needs a path.
func loadXZ(ctx context.Context, f io.Reader, path string) (*corpus.Corpus, error) {
	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, apperrors.NewParse("xz", path, err.Error())
	}
	br := bufio.NewReaderSize(xr, 4096)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, apperrors.NewParse("xz", path, err.Error())
	}

	inner := validation.InnerExtension(path)
	ft, err := validation.DetectFileType(bytes.NewReader(head), inner)
	if err != nil {
		return nil, apperrors.NewParse("corpus", path, err.Error())
	}

	switch ft {
	case validation.FileTypeXZ:
		return nil, apperrors.NewUnsupported("corpus format", "nested xz compression")
	case validation.FileTypeSQLite:
		tmp, err := os.CreateTemp("", "juniper-search-*.db")
		if err != nil {
			return nil, apperrors.NewIO("create", "temporary database", err)
		}
		defer os.Remove(tmp.Name())
		_, err = io.Copy(tmp, br)
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, apperrors.NewIO("decompress", path, err)
		}
		return sqlitecorpus.LoadFile(ctx, tmp.Name())
	}
	return decode(ft, br, inner)
}
