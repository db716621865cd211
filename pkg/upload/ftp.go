package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPConfig contains configuration for the FTP mover.
type FTPConfig struct {
	Addr     string        `env:"ADDR"`
	User     string        `env:"USER" envDefault:"anonymous"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// FTPConn is the subset of an FTP session used by FTPMover.
type FTPConn interface {
	Login(user, password string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

// FTPDialer opens a new FTP session.
type FTPDialer func(ctx context.Context, addr string, timeout time.Duration) (FTPConn, error)

// FTPMover stores saved files on an FTP server, one session per move.
// The destination built by the save pipeline is used as the remote path.
type FTPMover struct {
	cfg  FTPConfig
	dial FTPDialer
}

// FTPOption configures FTPMover.
type FTPOption func(*FTPMover)

// WithFTPDialer replaces the network dialer.
// Useful for testing with fakes.
func WithFTPDialer(d FTPDialer) FTPOption {
	return func(m *FTPMover) {
		if d != nil {
			m.dial = d
		}
	}
}

// NewFTPMover creates an FTP mover. Addr is required.
func NewFTPMover(cfg FTPConfig, opts ...FTPOption) (*FTPMover, error) {
	if cfg.Addr == "" {
		return nil, ErrInvalidConfig
	}
	m := &FTPMover{cfg: cfg, dial: dialFTP}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (FTPConn, error) {
	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(timeout))
	}
	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Move stores src at dst, creating missing remote directories, and removes
// src afterwards.
func (m *FTPMover) Move(ctx context.Context, src, dst string) error {
	if strings.Contains(dst, "..") {
		return fmt.Errorf("%w: %s", ErrInvalidPath, dst)
	}
	dst = path.Clean("/" + dst)
	if dst == "/" {
		return fmt.Errorf("%w: empty destination", ErrInvalidPath)
	}

	conn, err := m.dial(ctx, m.cfg.Addr, m.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFTPConnect, err)
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login(m.cfg.User, m.cfg.Password); err != nil {
		return fmt.Errorf("%w: %v", ErrFTPLogin, err)
	}

	// MakeDir fails for directories that already exist; Stor reports a
	// directory that is really missing.
	dir := ""
	for _, seg := range strings.Split(strings.Trim(path.Dir(dst), "/"), "/") {
		if seg == "" {
			continue
		}
		dir += "/" + seg
		_ = conn.MakeDir(dir)
	}

	body, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	err = conn.Stor(dst, body)
	_ = body.Close()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFTPStore, dst, err)
	}

	_ = os.Remove(src)
	return nil
}
