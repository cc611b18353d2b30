package testingh

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ory/dockertest"
	"github.com/ory/dockertest/docker"
)

const (
	defaultPort = "2222/tcp"
	// LogDir is where the host directory passed to NewContainer is mounted.
	LogDir = "/logs"
	User   = "dudk"
)

var hostName = os.Getenv("OVERRIDE_HOSTNAME")

func init() {
	const defaultHostName = "localhost"

	if hostName == "" {
		hostName = defaultHostName
	}
}

// Container is a throwaway OpenSSH server that accepts publicKey for User and
// exposes logDir read-only under LogDir.
type Container struct {
	resource *dockertest.Resource
}

func NewContainer(publicKey, logDir string, connectFn func(host string, port uint16) error) (*Container, error) {
	hostPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free hostPort: %w", err)
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not connect to docker: %w", err)
	}

	resource, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: "linuxserver/openssh-server",
			Tag:        "latest",
			Auth: docker.AuthConfiguration{
				Username: os.Getenv("ARTIFACTORY_USER"),
				Password: os.Getenv("ARTIFACTORY_PWD"),
			},
			Env: []string{
				"PUID=1000",
				"PGID=1000",
				"USER_NAME=" + User,
				"PUBLIC_KEY=" + publicKey,
				"PASSWORD_ACCESS=false",
			},
			Mounts: []string{logDir + ":" + LogDir + ":ro"},
			PortBindings: map[docker.Port][]docker.PortBinding{
				defaultPort: {{
					HostIP:   hostName,
					HostPort: strconv.Itoa(hostPort),
				}},
			},
		}, func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{
				Name: "no",
			}
		})
	if err != nil {
		return nil, fmt.Errorf("could not create a container: %w", err)
	}

	container := &Container{
		resource: resource,
	}

	port, err := strconv.ParseUint(resource.GetPort(defaultPort), 10, 16)
	if err != nil {
		_ = container.Purge()
		return nil, fmt.Errorf("container port: %w", err)
	}
	// sshd needs a few seconds to generate host keys before it accepts logins
	if err := pool.Retry(func() error {
		return connectFn(hostName, uint16(port))
	}); err != nil {
		_ = container.Purge()
		return nil, fmt.Errorf("could not connect to sshd: %w", err)
	}

	return container, nil
}

func (c *Container) Purge() error {
	return c.resource.Close()
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
