// Package transfer runs uploads and downloads on a background worker so the
// UI's control connection stays free for navigation. Exactly one job may be
// active at a time; cancellation is cooperative and observed at chunk and
// file boundaries.
//
// Known limitation, kept on purpose: cancelling an upload leaves the partial
// remote file in place. The data connection has just been torn down and
// servers disagree about the resulting state, so no cleanup command is sent.
// Cancelled downloads do remove the partial local file.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trungnl/ftptui/pkg/ftpx"
	"github.com/trungnl/ftptui/pkg/listing"
)

// ChunkSize is the streaming granularity; cancellation latency is bounded by
// one chunk for single files.
const ChunkSize = 8 * 1024

// dialTimeout is deliberately longer than the UI's connect timeout: a
// transfer session should tolerate a slow link rather than fail fast.
const dialTimeout = 30 * time.Second

const speedSampleInterval = 500 * time.Millisecond

var (
	// ErrBusy rejects a start while another transfer is running.
	ErrBusy = errors.New("transfer already in progress")
	// ErrCancelled unwinds a worker after the user requested cancellation.
	ErrCancelled = errors.New("transfer cancelled")
)

// Kind distinguishes transfer direction.
type Kind int

const (
	Upload Kind = iota
	Download
)

// Request describes one transfer to start.
type Request struct {
	Kind      Kind
	Name      string // entry name, identical on both sides
	LocalDir  string // local directory holding (or receiving) the entry
	RemoteDir string // remote directory holding (or receiving) the entry
	IsDir     bool
	Size      int64 // single files only; folder totals are counted by a pre-walk scan
}

// Status is a consistent snapshot of the active (or just finished) job.
type Status struct {
	Active     bool
	Kind       Kind
	Target     string
	Bytes      int64
	Total      int64
	FilesDone  int
	FilesTotal int
	Speed      float64 // bytes per second

	// Terminal state, written once by the worker.
	Message   string
	Failed    bool
	Cancelled bool
}

// DialFunc opens the dedicated authenticated session a job transfers over.
type DialFunc func(timeout time.Duration) (ftpx.Conn, error)

// Engine owns the single transfer slot.
type Engine struct {
	dial DialFunc

	mu     sync.Mutex
	job    *job
	cancel context.CancelFunc
}

// job progress is guarded by Engine.mu; the worker is the sole writer.
type job struct {
	kind   Kind
	target string
	active bool

	bytes      int64
	total      int64
	filesDone  int
	filesTotal int

	lastSampleTime  time.Time
	lastSampleBytes int64
	speed           float64

	message   string
	failed    bool
	cancelled bool
}

// New creates an idle engine.
func New(dial DialFunc) *Engine {
	return &Engine{dial: dial}
}

// Active reports whether a transfer is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job != nil && e.job.active
}

// Busy reports whether the job slot is occupied, either by a running worker
// or by a finished job whose result has not been consumed yet. Pollers keep
// polling while this is true; Active can flip to false between a failed
// ConsumeResult and the next check, but the slot stays occupied until the
// result is taken.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job != nil
}

// Snapshot returns a copy of the current job state for display.
func (e *Engine) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

func (e *Engine) statusLocked() Status {
	if e.job == nil {
		return Status{}
	}
	j := e.job
	return Status{
		Active:     j.active,
		Kind:       j.kind,
		Target:     j.target,
		Bytes:      j.bytes,
		Total:      j.total,
		FilesDone:  j.filesDone,
		FilesTotal: j.filesTotal,
		Speed:      j.speed,
		Message:    j.message,
		Failed:     j.failed,
		Cancelled:  j.cancelled,
	}
}

// ConsumeResult returns the terminal status of a finished job exactly once,
// clearing the slot for the next transfer.
func (e *Engine) ConsumeResult() (Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil || e.job.active {
		return Status{}, false
	}
	st := e.statusLocked()
	e.job = nil
	e.cancel = nil
	return st, true
}

// Cancel requests cooperative cancellation of the active job. The worker
// observes it at the next chunk or file boundary.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil || !e.job.active || e.cancel == nil {
		return false
	}
	e.cancel()
	return true
}

// Start launches a background worker for req. It fails immediately with
// ErrBusy while another job is active; there is no queueing.
func (e *Engine) Start(req Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job != nil && e.job.active {
		return ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		kind:           req.Kind,
		target:         req.Name,
		active:         true,
		total:          req.Size,
		lastSampleTime: time.Now(),
	}
	if req.IsDir {
		j.target = req.Name + "/"
	}
	e.job = j
	e.cancel = cancel

	log.Info().Int("kind", int(req.Kind)).Str("name", req.Name).Bool("dir", req.IsDir).Msg("transfer started")
	go e.run(ctx, cancel, req, j)
	return nil
}

func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, req Request, j *job) {
	defer cancel()
	err := e.transfer(ctx, req, j)

	verb, done := "Upload", "Uploaded"
	if req.Kind == Download {
		verb, done = "Download", "Downloaded"
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	j.active = false
	switch {
	case errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled):
		j.cancelled = true
		j.message = verb + " cancelled"
		log.Info().Str("name", req.Name).Msg("transfer cancelled")
	case err != nil:
		j.failed = true
		j.message = fmt.Sprintf("%s failed: %v", verb, err)
		log.Error().Err(err).Str("name", req.Name).Msg("transfer failed")
	case req.IsDir:
		j.message = fmt.Sprintf("%s folder: %s/ (%d files)", done, req.Name, j.filesDone)
	default:
		j.message = fmt.Sprintf("%s: %s (%s)", done, req.Name, listing.FormatSize(j.bytes))
	}
}

func (e *Engine) transfer(ctx context.Context, req Request, j *job) error {
	conn, err := e.dial(dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.ChangeDir(req.RemoteDir); err != nil {
		return &ftpx.RemoteOpError{Op: "cwd", Path: req.RemoteDir, Err: err}
	}

	switch {
	case req.IsDir && req.Kind == Upload:
		return e.uploadTree(ctx, conn, req, j)
	case req.IsDir:
		return e.downloadTree(ctx, conn, req, j)
	case req.Kind == Upload:
		return e.uploadFile(ctx, conn, filepath.Join(req.LocalDir, req.Name), req.Name, j)
	default:
		return e.downloadFile(ctx, conn, req.Name, filepath.Join(req.LocalDir, req.Name), j)
	}
}

func (e *Engine) uploadFile(ctx context.Context, conn ftpx.Conn, localPath, name string, j *job) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	r := &chunkReader{ctx: ctx, r: f, onChunk: func(n int64) { e.addBytes(j, n) }}
	if err := conn.Store(name, r); err != nil {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return err
	}
	return nil
}

func (e *Engine) downloadFile(ctx context.Context, conn ftpx.Conn, name, localPath string, j *job) error {
	f, err := os.Create(localPath)
	if err != nil {
		return err
	}

	w := &chunkWriter{ctx: ctx, w: f, onChunk: func(n int64) { e.addBytes(j, n) }}
	err = conn.Retrieve(name, w)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if ctx.Err() != nil {
			_ = os.Remove(localPath)
			return ErrCancelled
		}
		return err
	}
	return nil
}

func (e *Engine) uploadTree(ctx context.Context, conn ftpx.Conn, req Request, j *job) error {
	root := filepath.Join(req.LocalDir, req.Name)
	total, err := countLocalFiles(root)
	if err != nil {
		return err
	}

	e.mu.Lock()
	j.filesTotal = total
	j.target = fmt.Sprintf("%s/ (%d files)", req.Name, total)
	e.mu.Unlock()

	return e.uploadDir(ctx, conn, root, req.Name, j)
}

func (e *Engine) uploadDir(ctx context.Context, conn ftpx.Conn, localDir, remoteRel string, j *job) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}

	// The directory may already exist on the server; a MKD rejection that
	// matters resurfaces through the stores below.
	_ = conn.MakeDir(remoteRel)

	entries, err := listing.ReadLocal(localDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		if entry.IsDir {
			err := e.uploadDir(ctx, conn, filepath.Join(localDir, entry.Name), path.Join(remoteRel, entry.Name), j)
			if err != nil {
				return err
			}
			continue
		}
		err := e.uploadFile(ctx, conn, filepath.Join(localDir, entry.Name), path.Join(remoteRel, entry.Name), j)
		if err != nil {
			return err
		}
		e.mu.Lock()
		j.filesDone++
		e.mu.Unlock()
	}
	return nil
}

func (e *Engine) downloadTree(ctx context.Context, conn ftpx.Conn, req Request, j *job) error {
	total, err := countRemoteFiles(ctx, conn, req.Name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	j.filesTotal = total
	j.target = fmt.Sprintf("%s/ (%d files)", req.Name, total)
	e.mu.Unlock()

	return e.downloadDir(ctx, conn, req.Name, filepath.Join(req.LocalDir, req.Name), j)
}

func (e *Engine) downloadDir(ctx context.Context, conn ftpx.Conn, remoteName, localDir string, j *job) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return err
	}
	if err := conn.ChangeDir(remoteName); err != nil {
		return &ftpx.RemoteOpError{Op: "cwd", Path: remoteName, Err: err}
	}

	entries, err := conn.List()
	if err != nil {
		return &ftpx.RemoteOpError{Op: "list", Path: remoteName, Err: err}
	}
	listing.Sort(entries)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		if entry.IsDir {
			err := e.downloadDir(ctx, conn, entry.Name, filepath.Join(localDir, entry.Name), j)
			if err != nil {
				return err
			}
			continue
		}
		if err := e.downloadFile(ctx, conn, entry.Name, filepath.Join(localDir, entry.Name), j); err != nil {
			return err
		}
		e.mu.Lock()
		j.filesDone++
		e.mu.Unlock()
	}

	return conn.ChangeDir("..")
}

// addBytes advances the byte counter and resamples speed at most once per
// sample interval; calls inside the interval keep the previous estimate.
func (e *Engine) addBytes(j *job, n int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j.bytes += n

	now := time.Now()
	if elapsed := now.Sub(j.lastSampleTime); elapsed >= speedSampleInterval {
		j.speed = float64(j.bytes-j.lastSampleBytes) / elapsed.Seconds()
		j.lastSampleBytes = j.bytes
		j.lastSampleTime = now
	}
}

func countLocalFiles(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

func countRemoteFiles(ctx context.Context, conn ftpx.Conn, name string) (int, error) {
	if ctx.Err() != nil {
		return 0, ErrCancelled
	}
	if err := conn.ChangeDir(name); err != nil {
		return 0, &ftpx.RemoteOpError{Op: "cwd", Path: name, Err: err}
	}

	entries, err := conn.List()
	if err != nil {
		return 0, &ftpx.RemoteOpError{Op: "list", Path: name, Err: err}
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir {
			n, err := countRemoteFiles(ctx, conn, entry.Name)
			if err != nil {
				return 0, err
			}
			count += n
			continue
		}
		count++
	}

	if err := conn.ChangeDir(".."); err != nil {
		return 0, &ftpx.RemoteOpError{Op: "cwd", Path: "..", Err: err}
	}
	return count, nil
}
