package remote

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const testUser = "dudk"

// testServer is a minimal SSH server answering "cat '<path>'" exec requests
// from an in-memory file table.
type testServer struct {
	listener net.Listener
	hostKey  ssh.Signer
	files    map[string][]byte
	hold     chan struct{}

	mu       sync.Mutex
	commands []string

	wg sync.WaitGroup
}

func newTestServer(t *testing.T, authorized ssh.PublicKey, files map[string][]byte) *testServer {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	hostKey, err := ssh.NewSignerFromKey(hostPriv)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if conn.User() == testUser && bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown public key for %q", conn.User())
		},
	}
	cfg.AddHostKey(hostKey)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testServer{
		listener: l,
		hostKey:  hostKey,
		files:    files,
	}
	s.wg.Add(1)
	go s.serve(cfg)

	t.Cleanup(func() {
		_ = l.Close()
		s.wg.Wait()
	})
	return s
}

func (s *testServer) addr() (string, uint16) {
	tcp := s.listener.Addr().(*net.TCPAddr)
	return tcp.IP.String(), uint16(tcp.Port)
}

func (s *testServer) holdExec() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
	return s.hold
}

func (s *testServer) executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *testServer) serve(cfg *ssh.ServerConfig) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn, cfg)
		}()
	}
}

func (s *testServer) handle(nConn net.Conn, cfg *ssh.ServerConfig) {
	defer nConn.Close()

	conn, chans, reqs, err := ssh.NewServerConn(nConn, cfg)
	if err != nil {
		return
	}
	defer conn.Close()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ssh.DiscardRequests(reqs)
	}()

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.session(ch, requests)
		}()
	}
}

func (s *testServer) session(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer ch.Close()

	for req := range requests {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}

		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			continue
		}
		_ = req.Reply(true, nil)

		status := s.exec(ch, payload.Command)
		_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
		return
	}
}

func (s *testServer) exec(ch ssh.Channel, command string) uint32 {
	s.mu.Lock()
	s.commands = append(s.commands, command)
	hold := s.hold
	s.mu.Unlock()

	if hold != nil {
		<-hold
	}

	quoted, ok := strings.CutPrefix(command, "cat ")
	if !ok {
		_, _ = fmt.Fprintf(ch.Stderr(), "unsupported command: %s\n", command)
		return 127
	}
	path := strings.ReplaceAll(strings.Trim(quoted, "'"), `'\''`, "'")

	data, ok := s.files[path]
	if !ok {
		_, _ = fmt.Fprintf(ch.Stderr(), "cat: %s: No such file or directory\n", path)
		return 1
	}
	_, _ = ch.Write(data)
	return 0
}

// writeClientKey stores a fresh ed25519 key as PKCS#8 PEM and returns its path
// along with the public half.
func writeClientKey(t *testing.T, dir string) (string, ssh.PublicKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)

	path := filepath.Join(dir, "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))

	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return path, sshPub
}

func writeKnownHosts(t *testing.T, dir, addr string, key ssh.PublicKey) string {
	t.Helper()

	path := filepath.Join(dir, "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(addr)}, key) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(line), 0o600))
	return path
}
