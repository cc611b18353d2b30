package remote

import (
	"net"
	"strconv"
	"time"
)

type Config struct {
	Host string
	Port uint16
	User string
	// KeyPath is the private key used for public key authentication.
	KeyPath string
	// Path is the absolute location of the log on the remote host.
	Path string
	// KnownHostsPath disables host key verification when empty or missing.
	KnownHostsPath string
	DialTimeout    time.Duration
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
