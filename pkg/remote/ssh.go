package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/cephmedic/cephmedic/pkg/defaults"
	"github.com/cephmedic/cephmedic/pkg/errors"
	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// SSHConfig holds connection settings shared by all channels opened by an
// SSHDialer. Zero values fall back to package defaults.
type SSHConfig struct {
	// User is the SSH login user. Defaults to the current OS user name
	// taken from the USER environment variable.
	User string

	// KeyPath is the private key file to authenticate with. Optional;
	// the SSH agent is tried as well when SSH_AUTH_SOCK is set.
	KeyPath string

	// Passphrase decrypts KeyPath when the key is encrypted.
	Passphrase string

	// Password enables password authentication when set.
	Password string

	// KnownHostsPath is the known_hosts file consulted when StrictHostKey
	// is enabled.
	KnownHostsPath string

	// StrictHostKey fails closed when the peer's host key cannot be
	// verified against KnownHostsPath.
	StrictHostKey bool

	// Port is the SSH port. Defaults to 22.
	Port int

	// ConnectTimeout bounds the TCP dial and SSH handshake.
	ConnectTimeout time.Duration

	// CallTimeout bounds each remote operation on an open channel.
	CallTimeout time.Duration
}

// SSHDialer opens SSH-backed channels to cluster nodes.
type SSHDialer struct {
	cfg SSHConfig
}

// NewSSHDialer creates a dialer from the given configuration.
func NewSSHDialer(cfg SSHConfig) *SSHDialer {
	if cfg.User == "" {
		cfg.User = os.Getenv("USER")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = defaults.CallTimeout
	}
	return &SSHDialer{cfg: cfg}
}

// Dial opens an SSH channel to the target. Any failure here is reported as
// host-unreachable; the cluster collector recovers it per node.
func (d *SSHDialer) Dial(ctx context.Context, target Target) (Channel, error) {
	cfg := d.cfg
	if target.User != "" {
		cfg.User = target.User
	}
	if target.Port != 0 {
		cfg.Port = target.Port
	}
	host := target.Host

	var auths []ssh.AuthMethod
	if cfg.KeyPath != "" {
		signer, err := loadSigner(cfg.KeyPath, cfg.Passphrase)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeHostUnreachable, "load key", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auths = append(auths, ssh.Password(cfg.Password))
	}
	// Try SSH agent if available
	if a := os.Getenv("SSH_AUTH_SOCK"); a != "" {
		if conn, err := net.Dial("unix", a); err == nil {
			ag := agent.NewClient(conn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	hostKeyCB, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHostUnreachable, "host key policy", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         cfg.ConnectTimeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port))
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeHostUnreachable,
			"tcp dial failed", err, map[string]any{"host": host})
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		_ = conn.Close()
		return nil, errors.WrapWithContext(errors.ErrCodeHostUnreachable,
			"ssh handshake failed", err, map[string]any{"host": host})
	}

	client := ssh.NewClient(c, chans, reqs)
	return &sshChannel{
		host:        host,
		client:      client,
		runner:      &sshRunner{client: client},
		callTimeout: cfg.CallTimeout,
	}, nil
}

func hostKeyCallback(cfg SSHConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicit operator opt-out
	}
	// Try known_hosts file if present; else fail closed
	if _, err := os.Stat(cfg.KnownHostsPath); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s and strict host key checking is enabled", cfg.KnownHostsPath)
	}
	return knownhosts.New(cfg.KnownHostsPath)
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	b, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(b, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(b)
}

// runner executes one remote command, streaming its output to the given
// writers. A non-zero exit is returned as *ExitError; transport failures
// carry the REMOTE_CALL code.
type runner interface {
	Run(cmd string, stdout, stderr io.Writer) error
}

// sshRunner runs each command in a fresh session on a shared SSH client.
type sshRunner struct {
	client *ssh.Client
}

func (r *sshRunner) Run(cmd string, stdout, stderr io.Writer) error {
	session, err := r.client.NewSession()
	if err != nil {
		return errors.Wrap(errors.ErrCodeRemoteCall, "open session", err)
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr
	if err := session.Run(cmd); err != nil {
		var ee *ssh.ExitError
		if stdErrorsAs(err, &ee) {
			return &ExitError{Code: ee.ExitStatus()}
		}
		return errors.Wrap(errors.ErrCodeRemoteCall, "remote command failed", err)
	}
	return nil
}

// sshChannel executes remote operations as shell commands, one session per
// call. Data-bearing operations (readdir, stat, content reads) return stdout
// only, so stderr noise cannot corrupt captured contents or stat parsing;
// Output keeps the combined stream for diagnostics.
type sshChannel struct {
	host        string
	client      *ssh.Client
	runner      runner
	callTimeout time.Duration
}

func (c *sshChannel) Host() string { return c.host }

func (c *sshChannel) Close() error {
	return c.client.Close()
}

// run executes one command bounded by the call timeout. The returned bytes
// are stdout; with combined set, stderr is interleaved into them.
func (c *sshChannel) run(ctx context.Context, cmd string, combined bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	errSink := io.Writer(&stderr)
	if combined {
		errSink = &stdout
	}

	ch := make(chan error, 1)
	go func() {
		ch <- c.runner.Run(cmd, &stdout, errSink)
	}()

	select {
	case err := <-ch:
		if err != nil {
			var ee *ExitError
			if stdErrorsAs(err, &ee) {
				diag := stderr.Bytes()
				if combined {
					diag = stdout.Bytes()
				}
				ee.Output = diag
				return stdout.Bytes(), classifyExit(ee, diag)
			}
			return stdout.Bytes(), err
		}
		return stdout.Bytes(), nil
	case <-ctx.Done():
		// The session is abandoned; the caller closes the channel, which
		// tears down any in-flight session with it.
		return nil, errors.WrapWithContext(errors.ErrCodeTimeout,
			"remote call timed out", ctx.Err(), map[string]any{"host": c.host})
	}
}

func (c *sshChannel) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	cmd := fmt.Sprintf("find %s -mindepth 1 -maxdepth 1 -printf '%%y %%p\\n'", shellQuote(path))
	out, err := c.run(ctx, cmd, false)
	if err != nil {
		return nil, err
	}
	return parseFindOutput(out), nil
}

func (c *sshChannel) Stat(ctx context.Context, path string) (*metadata.StatRecord, error) {
	cmd := fmt.Sprintf("stat -L -c '%s' %s", statFormat, shellQuote(path))
	out, err := c.run(ctx, cmd, false)
	if err != nil {
		return nil, err
	}
	return parseStatOutput(strings.TrimSpace(string(out)))
}

func (c *sshChannel) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return c.run(ctx, "cat "+shellQuote(path), false)
}

func (c *sshChannel) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(name))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return c.run(ctx, strings.Join(parts, " "), true)
}
