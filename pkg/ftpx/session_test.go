package ftpx

import (
	"errors"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/trungnl/ftptui/pkg/listing"
)

// fakeConn simulates a remote tree with real cwd semantics so the
// recursive-delete invariants can be checked without a server.
type fakeConn struct {
	root       *fakeDir
	cwd        string
	failDelete map[string]bool // absolute file path -> forced failure
	quitCalled bool
	loginErr   error
}

type fakeDir struct {
	dirs  map[string]*fakeDir
	files map[string]int64
}

func newFakeDir() *fakeDir {
	return &fakeDir{dirs: map[string]*fakeDir{}, files: map[string]int64{}}
}

func newFakeConn() *fakeConn {
	return &fakeConn{root: newFakeDir(), cwd: "/", failDelete: map[string]bool{}}
}

// mkdirAll builds nested fake directories from a slash path.
func (c *fakeConn) mkdirAll(p string) *fakeDir {
	dir := c.root
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		if dir.dirs[part] == nil {
			dir.dirs[part] = newFakeDir()
		}
		dir = dir.dirs[part]
	}
	return dir
}

func (c *fakeConn) dirAt(p string) *fakeDir {
	dir := c.root
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		dir = dir.dirs[part]
		if dir == nil {
			return nil
		}
	}
	return dir
}

func (c *fakeConn) Login(user, password string) error { return c.loginErr }
func (c *fakeConn) Quit() error                       { c.quitCalled = true; return nil }
func (c *fakeConn) CurrentDir() (string, error)       { return c.cwd, nil }

func (c *fakeConn) ChangeDir(p string) error {
	var target string
	switch {
	case p == "..":
		target = path.Dir(c.cwd)
	case strings.HasPrefix(p, "/"):
		target = path.Clean(p)
	default:
		target = path.Join(c.cwd, p)
	}
	if c.dirAt(target) == nil {
		return errors.New("550 no such directory")
	}
	c.cwd = target
	return nil
}

func (c *fakeConn) MakeDir(name string) error {
	c.mkdirAll(path.Join(c.cwd, name))
	return nil
}

func (c *fakeConn) RemoveDir(name string) error {
	full := path.Join(c.cwd, name)
	dir := c.dirAt(full)
	if dir == nil {
		return errors.New("550 no such directory")
	}
	if len(dir.dirs) > 0 || len(dir.files) > 0 {
		return errors.New("550 directory not empty")
	}
	delete(c.dirAt(path.Dir(full)).dirs, path.Base(full))
	return nil
}

func (c *fakeConn) Delete(name string) error {
	full := path.Join(c.cwd, name)
	if c.failDelete[full] {
		return errors.New("550 permission denied")
	}
	dir := c.dirAt(path.Dir(full))
	if dir == nil {
		return errors.New("550 no such file")
	}
	if _, ok := dir.files[path.Base(full)]; !ok {
		return errors.New("550 no such file")
	}
	delete(dir.files, path.Base(full))
	return nil
}

func (c *fakeConn) Rename(from, to string) error { return nil }

func (c *fakeConn) List() ([]listing.Entry, error) {
	dir := c.dirAt(c.cwd)
	if dir == nil {
		return nil, errors.New("550 no such directory")
	}
	var entries []listing.Entry
	for name := range dir.dirs {
		entries = append(entries, listing.Entry{Name: name, IsDir: true})
	}
	for name, size := range dir.files {
		entries = append(entries, listing.Entry{Name: name, Size: size})
	}
	return entries, nil
}

func (c *fakeConn) Store(name string, r io.Reader) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	c.dirAt(c.cwd).files[name] = n
	return nil
}

func (c *fakeConn) Retrieve(name string, w io.Writer) error {
	size, ok := c.dirAt(c.cwd).files[name]
	if !ok {
		return errors.New("550 no such file")
	}
	_, err := w.Write(make([]byte, size))
	return err
}

func sessionWith(conn Conn) *Session {
	s := NewSession("example.test", 21, "anonymous", "")
	s.conn = conn
	return s
}

func TestSessionConnect(t *testing.T) {
	t.Run("Error Handling: dial failure leaves session disconnected", func(t *testing.T) {
		s := NewSession("example.test", 21, "anonymous", "")
		s.dial = func(host string, port int, timeout time.Duration) (Conn, error) {
			return nil, errors.New("connection refused")
		}

		err := s.Connect(time.Second)
		if err == nil {
			t.Fatal("expected connect to fail")
		}
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			t.Errorf("expected ConnectionError, got %T", err)
		}
		if s.Connected() {
			t.Error("session should stay disconnected after a failed dial")
		}
	})

	t.Run("Error Handling: login failure quits the connection", func(t *testing.T) {
		conn := newFakeConn()
		conn.loginErr = errors.New("530 login incorrect")

		s := NewSession("example.test", 21, "anonymous", "")
		s.dial = func(host string, port int, timeout time.Duration) (Conn, error) {
			return conn, nil
		}

		if err := s.Connect(time.Second); err == nil {
			t.Fatal("expected login to fail")
		}
		if !conn.quitCalled {
			t.Error("expected a best-effort QUIT after failed login")
		}
		if s.Connected() {
			t.Error("session should stay disconnected after a failed login")
		}
	})

	t.Run("Core Functionality: disconnect clears state", func(t *testing.T) {
		conn := newFakeConn()
		s := sessionWith(conn)

		s.Disconnect()
		if s.Connected() {
			t.Error("expected disconnected session")
		}
		if !conn.quitCalled {
			t.Error("expected QUIT on disconnect")
		}
	})
}

func TestSessionRemoveAll(t *testing.T) {
	buildTree := func(conn *fakeConn) {
		data := conn.mkdirAll("/data")
		data.files["a.txt"] = 10
		sub := conn.mkdirAll("/data/sub")
		sub.files["b.txt"] = 20
	}

	t.Run("Core Functionality: deletes nested tree and restores cwd", func(t *testing.T) {
		conn := newFakeConn()
		buildTree(conn)
		s := sessionWith(conn)

		if err := s.RemoveAll("data"); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}
		if conn.cwd != "/" {
			t.Errorf("expected cwd restored to /, got %s", conn.cwd)
		}
		if conn.dirAt("/data") != nil {
			t.Error("expected /data to be gone")
		}
	})

	t.Run("Error Handling: nested failure still restores cwd", func(t *testing.T) {
		conn := newFakeConn()
		buildTree(conn)
		conn.failDelete["/data/sub/b.txt"] = true
		s := sessionWith(conn)

		err := s.RemoveAll("data")
		if err == nil {
			t.Fatal("expected RemoveAll to fail on nested delete")
		}
		var opErr *RemoteOpError
		if !errors.As(err, &opErr) {
			t.Errorf("expected RemoteOpError, got %T", err)
		}
		if conn.cwd != "/" {
			t.Errorf("expected cwd restored to / after failure, got %s", conn.cwd)
		}
	})

	t.Run("Edge Case: cwd restored from a nested working directory", func(t *testing.T) {
		conn := newFakeConn()
		buildTree(conn)
		conn.mkdirAll("/data/sub/deep")
		if err := conn.ChangeDir("/data"); err != nil {
			t.Fatal(err)
		}
		s := sessionWith(conn)

		if err := s.RemoveAll("sub"); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}
		if conn.cwd != "/data" {
			t.Errorf("expected cwd restored to /data, got %s", conn.cwd)
		}
	})
}

func TestSessionOps(t *testing.T) {
	t.Run("Error Handling: rejected command becomes RemoteOpError", func(t *testing.T) {
		conn := newFakeConn()
		s := sessionWith(conn)

		err := s.ChangeDir("missing")
		var opErr *RemoteOpError
		if !errors.As(err, &opErr) {
			t.Fatalf("expected RemoteOpError, got %T", err)
		}
		if opErr.Op != "cwd" || opErr.Path != "missing" {
			t.Errorf("unexpected op error: %v", opErr)
		}
	})

	t.Run("Core Functionality: list returns server entries", func(t *testing.T) {
		conn := newFakeConn()
		conn.mkdirAll("/docs")
		conn.root.files["readme.md"] = 5
		s := sessionWith(conn)

		entries, err := s.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})
}
