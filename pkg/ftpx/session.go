package ftpx

import (
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trungnl/ftptui/pkg/listing"
)

// Session owns one authenticated control connection and tracks the server
// address it belongs to. The UI holds one Session for navigation; the
// transfer engine dials its own so the two never contend.
type Session struct {
	Host     string
	Port     int
	User     string
	Password string

	dial DialFunc
	conn Conn
}

// NewSession creates a disconnected session for the given server.
func NewSession(host string, port int, user, password string) *Session {
	return &Session{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		dial:     Dial,
	}
}

// Connected reports whether the session holds a live connection.
func (s *Session) Connected() bool { return s.conn != nil }

// Connect dials and logs in. On failure the session stays disconnected.
func (s *Session) Connect(timeout time.Duration) error {
	conn, err := s.dial(s.Host, s.Port, timeout)
	if err != nil {
		log.Error().Err(err).Str("host", s.Host).Int("port", s.Port).Msg("connect failed")
		return &ConnectionError{Host: s.Host, Port: s.Port, Err: err}
	}
	if err := conn.Login(s.User, s.Password); err != nil {
		_ = conn.Quit()
		log.Error().Err(err).Str("host", s.Host).Msg("login failed")
		return &ConnectionError{Host: s.Host, Port: s.Port, Err: err}
	}
	s.conn = conn
	log.Info().Str("host", s.Host).Int("port", s.Port).Msg("connected")
	return nil
}

// Disconnect attempts a polite QUIT and always clears local state.
func (s *Session) Disconnect() {
	if s.conn != nil {
		_ = s.conn.Quit()
		s.conn = nil
		log.Info().Str("host", s.Host).Msg("disconnected")
	}
}

// CurrentDir returns the remote working directory.
func (s *Session) CurrentDir() (string, error) {
	wd, err := s.conn.CurrentDir()
	if err != nil {
		return "", &RemoteOpError{Op: "pwd", Err: err}
	}
	return wd, nil
}

// ChangeDir enters name, or the parent for "..".
func (s *Session) ChangeDir(name string) error {
	if err := s.conn.ChangeDir(name); err != nil {
		return &RemoteOpError{Op: "cwd", Path: name, Err: err}
	}
	return nil
}

// MakeDir creates a directory in the remote working directory.
func (s *Session) MakeDir(name string) error {
	if err := s.conn.MakeDir(name); err != nil {
		return &RemoteOpError{Op: "mkdir", Path: name, Err: err}
	}
	return nil
}

// Delete removes a single remote file.
func (s *Session) Delete(name string) error {
	if err := s.conn.Delete(name); err != nil {
		return &RemoteOpError{Op: "delete", Path: name, Err: err}
	}
	return nil
}

// RemoveDir removes an empty remote directory. Non-empty trees go through
// RemoveAll.
func (s *Session) RemoveDir(name string) error {
	if err := s.conn.RemoveDir(name); err != nil {
		return &RemoteOpError{Op: "rmdir", Path: name, Err: err}
	}
	return nil
}

// Rename renames a remote file or directory.
func (s *Session) Rename(from, to string) error {
	if err := s.conn.Rename(from, to); err != nil {
		return &RemoteOpError{Op: "rename", Path: from, Err: err}
	}
	return nil
}

// List returns the entries of the remote working directory. Callers prepend
// the synthetic parent entry and apply the sort contract.
func (s *Session) List() ([]listing.Entry, error) {
	entries, err := s.conn.List()
	if err != nil {
		return nil, &RemoteOpError{Op: "list", Err: err}
	}
	return entries, nil
}

// Store uploads r as name in the remote working directory.
func (s *Session) Store(name string, r io.Reader) error {
	return s.conn.Store(name, r)
}

// Retrieve downloads name from the remote working directory into w.
func (s *Session) Retrieve(name string, w io.Writer) error {
	return s.conn.Retrieve(name, w)
}

// RemoveAll deletes a remote directory and everything beneath it. The remote
// working directory is restored to its pre-call value whether the delete
// succeeds or fails, so the rest of the UI never observes a dangling cwd.
func (s *Session) RemoveAll(name string) error {
	origin, err := s.conn.CurrentDir()
	if err != nil {
		return &RemoteOpError{Op: "pwd", Err: err}
	}
	if err := s.removeTree(name); err != nil {
		_ = s.conn.ChangeDir(origin)
		return err
	}
	return nil
}

func (s *Session) removeTree(name string) error {
	origin, err := s.conn.CurrentDir()
	if err != nil {
		return &RemoteOpError{Op: "pwd", Err: err}
	}
	if err := s.conn.ChangeDir(name); err != nil {
		return &RemoteOpError{Op: "cwd", Path: name, Err: err}
	}

	entries, err := s.conn.List()
	if err != nil {
		_ = s.conn.ChangeDir(origin)
		return &RemoteOpError{Op: "list", Path: name, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir {
			if err := s.removeTree(entry.Name); err != nil {
				_ = s.conn.ChangeDir(origin)
				return err
			}
			continue
		}
		if err := s.conn.Delete(entry.Name); err != nil {
			_ = s.conn.ChangeDir(origin)
			return &RemoteOpError{Op: "delete", Path: entry.Name, Err: err}
		}
	}

	// Back out, then remove the now-empty directory.
	if err := s.conn.ChangeDir(origin); err != nil {
		return &RemoteOpError{Op: "cwd", Path: origin, Err: err}
	}
	if err := s.conn.RemoveDir(name); err != nil {
		return &RemoteOpError{Op: "rmdir", Path: name, Err: err}
	}
	return nil
}
