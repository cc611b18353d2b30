package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultDialTimeout = 30 * time.Second

// Fetcher reads a whole file from a remote host over a single SSH session.
type Fetcher struct {
	cfg       Config
	clientCfg *ssh.ClientConfig
	logger    zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) (*Fetcher, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	signer, err := loadSigner(cfg.KeyPath)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := newHostKeyCallback(cfg.KnownHostsPath, logger)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		cfg: cfg,
		clientCfg: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.DialTimeout,
		},
		logger: logger,
	}, nil
}

// Fetch runs cat on the configured path and returns its output, decompressed
// when the file is gzip or zstd encoded. Cancelling ctx tears down the
// connection.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	addr := f.cfg.Addr()
	l := f.logger.With().Str("addr", addr).Str("path", f.cfg.Path).Logger()
	l.Info().Msg("Fetching remote log.")

	dialer := net.Dialer{Timeout: f.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	_ = conn.SetDeadline(time.Now().Add(f.cfg.DialTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, f.clientCfg)
	if err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("ssh handshake with %s: %w", addr, err))
	}
	_ = conn.SetDeadline(time.Time{})

	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("new session: %w", err))
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	cmd := "cat " + shellQuote(f.cfg.Path)
	if err = session.Run(cmd); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, ctxErr(ctx, fmt.Errorf("run %q: %w", cmd, err))
	}
	l.Debug().Int("bytes", stdout.Len()).Msg("Remote log received.")

	data, err := decompress(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", f.cfg.Path, err)
	}
	return data, nil
}

func loadSigner(path string) (ssh.Signer, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err != nil {
		var passErr *ssh.PassphraseMissingError
		if errors.As(err, &passErr) {
			return nil, fmt.Errorf("private key %s is passphrase protected, which is not supported", path)
		}
		return nil, fmt.Errorf("parse private key %s: %w", path, err)
	}
	return signer, nil
}

func newHostKeyCallback(path string, logger zerolog.Logger) (ssh.HostKeyCallback, error) {
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			cb, err := knownhosts.New(path)
			if err != nil {
				return nil, fmt.Errorf("load known hosts %s: %w", path, err)
			}
			return cb, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("stat known hosts: %w", err)
		}
	}

	logger.Warn().Str("known_hosts", path).Msg("No known hosts file, the host key will not be verified.")
	return ssh.InsecureIgnoreHostKey(), nil
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return err
}
