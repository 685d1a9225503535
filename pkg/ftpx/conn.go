package ftpx

import (
	"io"
	"net"
	"strconv"
	"time"

	"github.com/gonzalop/ftp"

	"github.com/trungnl/ftptui/pkg/listing"
)

// Conn is the control-connection surface the rest of the program depends on.
// The production implementation wraps gonzalop/ftp; tests substitute fakes.
type Conn interface {
	Login(user, password string) error
	Quit() error
	ChangeDir(path string) error
	CurrentDir() (string, error)
	MakeDir(name string) error
	RemoveDir(name string) error
	Delete(name string) error
	Rename(from, to string) error
	// List returns the parsed entries of the current working directory,
	// without the synthetic parent entry.
	List() ([]listing.Entry, error)
	Store(name string, r io.Reader) error
	Retrieve(name string, w io.Writer) error
}

// DialFunc opens a raw (not yet authenticated) connection.
type DialFunc func(host string, port int, timeout time.Duration) (Conn, error)

// Dial connects to an FTP server. Listing lines are parsed by this
// package's own strict long-format parser rather than the library default,
// so the fields the UI relies on are interpreted in exactly one place.
func Dial(host string, port int, timeout time.Duration) (Conn, error) {
	client, err := ftp.Dial(
		net.JoinHostPort(host, strconv.Itoa(port)),
		ftp.WithTimeout(timeout),
		ftp.WithCustomListParser(listParser{}),
	)
	if err != nil {
		return nil, err
	}
	return &ftpConn{client: client}, nil
}

// DialAndLogin opens a fresh authenticated connection, used by the transfer
// engine so a running transfer never ties up the UI's control connection.
func DialAndLogin(host string, port int, user, password string, timeout time.Duration) (Conn, error) {
	conn, err := Dial(host, port, timeout)
	if err != nil {
		return nil, &ConnectionError{Host: host, Port: port, Err: err}
	}
	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, &ConnectionError{Host: host, Port: port, Err: err}
	}
	return conn, nil
}

// listParser adapts listing.ParseLine to the library's parser hook.
type listParser struct{}

func (listParser) Parse(line string) (*ftp.Entry, bool) {
	parsed, ok := listing.ParseLine(line)
	if !ok {
		return nil, false
	}
	entry := &ftp.Entry{
		Name: parsed.Name,
		Size: parsed.Size,
		Type: "file",
	}
	if parsed.IsDir {
		entry.Type = "dir"
	}
	return entry, true
}

type ftpConn struct {
	client *ftp.Client
}

func (c *ftpConn) Login(user, password string) error { return c.client.Login(user, password) }
func (c *ftpConn) Quit() error                       { return c.client.Quit() }
func (c *ftpConn) ChangeDir(path string) error       { return c.client.ChangeDir(path) }
func (c *ftpConn) CurrentDir() (string, error)       { return c.client.CurrentDir() }
func (c *ftpConn) MakeDir(name string) error         { return c.client.MakeDir(name) }
func (c *ftpConn) RemoveDir(name string) error       { return c.client.RemoveDir(name) }
func (c *ftpConn) Delete(name string) error          { return c.client.Delete(name) }
func (c *ftpConn) Rename(from, to string) error      { return c.client.Rename(from, to) }

func (c *ftpConn) List() ([]listing.Entry, error) {
	raw, err := c.client.List(".")
	if err != nil {
		return nil, err
	}
	entries := make([]listing.Entry, 0, len(raw))
	for _, e := range raw {
		// Some servers include dot entries in LIST output.
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, listing.Entry{
			Name:  e.Name,
			Size:  e.Size,
			IsDir: e.Type == "dir",
		})
	}
	return entries, nil
}

func (c *ftpConn) Store(name string, r io.Reader) error {
	return c.client.Store(name, r)
}

func (c *ftpConn) Retrieve(name string, w io.Writer) error {
	return c.client.Retrieve(name, w)
}
