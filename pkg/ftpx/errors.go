package ftpx

import "fmt"

// ConnectionError reports a failed connect or login attempt.
type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RemoteOpError reports a single remote command rejected by the server.
// Callers surface it as a status message and do not retry.
type RemoteOpError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteOpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteOpError) Unwrap() error { return e.Err }
