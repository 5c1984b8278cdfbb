package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/validation"
)

// FTPOptions configures the ftp:// fetcher.
type FTPOptions struct {
	Timeout  time.Duration
	CacheDir string
	User     string
	Password string
}

// ftpClient is the subset of *ftp.ServerConn the fetcher uses.
type ftpClient interface {
	Login(user, password string) error
	FileSize(path string) (int64, error)
	Retrieve(path string) (io.ReadCloser, error)
	Quit() error
}

type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (ftpClient, error)

type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) Retrieve(p string) (io.ReadCloser, error) {
	return c.Retr(p)
}

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (ftpClient, error) {
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return serverConn{conn}, nil
}

// ftpFetcher downloads remote corpora into CacheDir/<host>/<file>.
type ftpFetcher struct {
	opts FTPOptions
	dial dialFunc
}

// cachePath returns where the file behind u is stored locally.
func (f *ftpFetcher) cachePath(u *url.URL) (string, error) {
	host, err := validation.SanitizeFilename(u.Hostname())
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", u.Hostname(), err)
	}
	name, err := validation.SanitizeFilename(path.Base(u.Path))
	if err != nil {
		return "", fmt.Errorf("invalid remote file %q: %w", u.Path, err)
	}
	rel, err := validation.SanitizePath(f.opts.CacheDir, filepath.Join(host, name))
	if err != nil {
		return "", err
	}
	return filepath.Join(f.opts.CacheDir, rel), nil
}

// Fetch downloads u unless a cached copy of the same size exists, and
// returns the local path.
func (f *ftpFetcher) Fetch(ctx context.Context, u *url.URL) (string, error) {
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", apperrors.NewValidation("corpus", "ftp URL has no file path")
	}
	local, err := f.cachePath(u)
	if err != nil {
		return "", err
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}
	conn, err := f.dial(ctx, addr, f.opts.Timeout)
	if err != nil {
		return "", apperrors.NewIO("connect", addr, err)
	}
	defer conn.Quit()

	user, pass := f.opts.User, f.opts.Password
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return "", apperrors.NewIO("login", addr, err)
	}

	if size, err := conn.FileSize(u.Path); err == nil {
		if info, err := os.Stat(local); err == nil && info.Size() == size {
			logging.Debug("using cached corpus", "url", u.Redacted(), "path", local)
			return local, nil
		}
	}

	start := time.Now()
	body, err := conn.Retrieve(u.Path)
	if err != nil {
		return "", apperrors.NewIO("retrieve", u.Path, err)
	}
	defer body.Close()

	n, err := writeAtomic(local, body)
	if err != nil {
		return "", err
	}
	logging.Info("corpus downloaded",
		"url", u.Redacted(),
		"path", local,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return local, nil
}

// writeAtomic copies r to a temporary file next to dst and renames it.
func writeAtomic(dst string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, apperrors.NewIO("create cache dir", filepath.Dir(dst), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return 0, apperrors.NewIO("create", dst, err)
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, apperrors.NewIO("write", dst, err)
	}
	return n, nil
}
