package tui

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/trungnl/ftptui/pkg/config"
	"github.com/trungnl/ftptui/pkg/ftpx"
	"github.com/trungnl/ftptui/pkg/listing"
	"github.com/trungnl/ftptui/pkg/transfer"
)

const (
	connectTimeout = 10 * time.Second
	pollInterval   = 100 * time.Millisecond

	// Large file threshold for view/edit (10MB)
	maxViewSize = 10 * 1024 * 1024
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// tickMsg drives the progress repaint while a transfer runs.
type tickMsg time.Time

// editFinishedMsg returns control after $EDITOR exits.
type editFinishedMsg struct {
	name    string
	tmpPath string
	opened  time.Time
	err     error
}

// Browser is the dual-pane model. The UI session handles navigation and
// quick remote operations; the transfer engine dials its own session so a
// running transfer never blocks browsing.
type Browser struct {
	session *ftpx.Session
	engine  *transfer.Engine
	store   *config.Store

	local  *Pane
	remote *Pane
	active PaneKind

	width  int
	height int

	status     string
	statusKind statusKind

	modal        *modal
	pendingEntry listing.Entry

	viewing  bool
	viewer   viewport.Model
	viewName string

	bar progress.Model
}

// NewBrowser builds the model around the persisted server. It does not
// connect; the caller decides whether to attempt that on startup.
func NewBrowser(store *config.Store) *Browser {
	cfg := store.Get()

	b := &Browser{
		store:   store,
		session: ftpx.NewSession(cfg.Host, cfg.Port, config.DefaultUser, ""),
		active:  LocalPane,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
	b.engine = transfer.New(b.dialTransfer)

	localWd, err := os.Getwd()
	if err != nil {
		localWd = os.Getenv("HOME")
	}
	b.local = &Pane{Kind: LocalPane, Path: localWd}
	b.remote = &Pane{Kind: RemotePane, Path: "/"}

	b.loadLocal()
	return b
}

// SetServer points the model at a different server before the first connect.
func (b *Browser) SetServer(host string, port int) {
	b.session = ftpx.NewSession(host, port, config.DefaultUser, "")
}

// dialTransfer opens the dedicated session a transfer job runs over.
func (b *Browser) dialTransfer(timeout time.Duration) (ftpx.Conn, error) {
	s := b.session
	return ftpx.DialAndLogin(s.Host, s.Port, s.User, s.Password, timeout)
}

// Connect attempts to open the session and sync the remote pane. A failure
// becomes a status message; the browser stays usable disconnected.
func (b *Browser) Connect() {
	if err := b.session.Connect(connectTimeout); err != nil {
		b.setStatus(statusError, fmt.Sprintf("Connect failed: %v", err))
		return
	}
	// Only a server we actually reached is worth remembering.
	if err := b.store.SetServer(b.session.Host, b.session.Port); err != nil {
		log.Warn().Err(err).Msg("failed to persist server config")
	}

	wd, err := b.session.CurrentDir()
	if err != nil {
		wd = "/"
	}
	b.remote.Enter(wd)
	b.loadRemote()
	b.setStatus(statusSuccess, fmt.Sprintf("Connected to %s:%d", b.session.Host, b.session.Port))
}

func (b *Browser) disconnect() {
	b.session.Disconnect()
	b.remote.SetEntries(nil)
	b.remote.Enter("/")
	b.setStatus(statusInfo, "Disconnected")
}

func (b *Browser) setStatus(kind statusKind, msg string) {
	b.status = msg
	b.statusKind = kind
}

func (b *Browser) activePane() *Pane {
	if b.active == LocalPane {
		return b.local
	}
	return b.remote
}

func (b *Browser) loadLocal() {
	entries, err := listing.ReadLocal(b.local.Path)
	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Local listing failed: %v", err))
		b.local.SetEntries(nil)
		return
	}

	out := make([]listing.Entry, 0, len(entries)+1)
	if filepath.Dir(b.local.Path) != b.local.Path {
		out = append(out, listing.Parent())
	}
	out = append(out, entries...)
	b.local.SetEntries(out)
}

func (b *Browser) loadRemote() {
	if !b.session.Connected() {
		b.remote.SetEntries(nil)
		return
	}

	entries, err := b.session.List()
	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Remote listing failed: %v", err))
		b.remote.SetEntries(nil)
		return
	}

	out := make([]listing.Entry, 0, len(entries)+1)
	out = append(out, listing.Parent())
	out = append(out, entries...)
	listing.Sort(out)
	b.remote.SetEntries(out)
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *Browser) Init() tea.Cmd {
	if b.engine.Active() {
		return tick()
	}
	return nil
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		if b.viewing {
			b.viewer.Width = msg.Width - 4
			b.viewer.Height = msg.Height - 5
		}
		return b, nil

	case tickMsg:
		if result, ok := b.engine.ConsumeResult(); ok {
			kind := statusSuccess
			if result.Failed {
				kind = statusError
			} else if result.Cancelled {
				kind = statusInfo
			}
			b.setStatus(kind, result.Message)
			b.loadLocal()
			b.loadRemote()
			return b, nil
		}
		// The worker may finish between the failed consume above and this
		// check; the slot stays occupied until the result is taken, so keep
		// ticking whenever it is.
		if b.engine.Busy() {
			return b, tick()
		}
		return b, nil

	case editFinishedMsg:
		return b, b.finishEdit(msg)

	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b.viewing {
		switch msg.String() {
		case "q", "esc", "v":
			b.viewing = false
			return b, nil
		}
		var cmd tea.Cmd
		b.viewer, cmd = b.viewer.Update(msg)
		return b, cmd
	}

	if b.modal != nil {
		done, result, cmd := b.modal.handleKey(msg)
		if !done {
			return b, cmd
		}
		b.modal = nil
		return b, b.applyModalResult(result)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		b.engine.Cancel()
		return b, tea.Quit

	case "tab":
		if b.active == LocalPane {
			b.active = RemotePane
		} else {
			b.active = LocalPane
		}

	case "up", "k":
		b.activePane().MoveUp()
		b.activePane().EnsureVisible(b.listHeight())

	case "down", "j":
		b.activePane().MoveDown()
		b.activePane().EnsureVisible(b.listHeight())

	case "pgup":
		b.activePane().PageUp(b.listHeight())
		b.activePane().EnsureVisible(b.listHeight())

	case "pgdown":
		b.activePane().PageDown(b.listHeight())
		b.activePane().EnsureVisible(b.listHeight())

	case "home":
		b.activePane().Home()
		b.activePane().EnsureVisible(b.listHeight())

	case "end":
		b.activePane().End()
		b.activePane().EnsureVisible(b.listHeight())

	case "enter", "right", "l":
		b.enterSelected()

	case "left", "backspace", "h":
		b.enterParent()

	case "R":
		b.loadLocal()
		b.loadRemote()
		b.setStatus(statusSuccess, "Refreshed")

	case "x":
		if b.engine.Cancel() {
			b.setStatus(statusInfo, "Cancellation requested...")
		} else {
			b.setStatus(statusInfo, "No active transfer")
		}

	case "f", "/":
		b.modal = newPromptModal(promptSearch, "Search", "")
		return b, nil

	case "u":
		return b, b.beginUpload()

	case "d":
		return b, b.beginDownload()

	case "D":
		return b, b.beginDelete()

	case "r":
		return b, b.beginRename()

	case "m":
		return b, b.beginMkdir()

	case "v":
		return b, b.viewRemoteFile()

	case "e":
		return b, b.editRemoteFile()

	case "c":
		if b.refuseWhileBusy() {
			return b, nil
		}
		if b.session.Connected() {
			b.disconnect()
		} else {
			b.Connect()
		}

	case "s":
		if b.session.Connected() {
			b.setStatus(statusInfo, "Disconnect first to change servers")
			return b, nil
		}
		prefill := net.JoinHostPort(b.session.Host, strconv.Itoa(b.session.Port))
		b.modal = newPromptModal(promptServer, "Server (host:port)", prefill)
		return b, nil
	}

	return b, nil
}

// refuseWhileBusy guards actions that would race the running transfer.
func (b *Browser) refuseWhileBusy() bool {
	if b.engine.Active() {
		b.setStatus(statusError, "Transfer in progress (x to cancel)")
		return true
	}
	return false
}

func (b *Browser) enterSelected() {
	pane := b.activePane()
	entry, ok := pane.Selected()
	if !ok || !entry.IsDir {
		return
	}

	if pane.Kind == LocalPane {
		target := filepath.Join(pane.Path, entry.Name)
		if entry.Name == listing.ParentName {
			target = filepath.Dir(pane.Path)
		}
		pane.Enter(target)
		b.loadLocal()
		return
	}

	if !b.session.Connected() {
		return
	}
	if err := b.session.ChangeDir(entry.Name); err != nil {
		b.setStatus(statusError, err.Error())
		return
	}
	wd, err := b.session.CurrentDir()
	if err != nil {
		wd = "/"
	}
	pane.Enter(wd)
	b.loadRemote()
}

func (b *Browser) enterParent() {
	pane := b.activePane()

	if pane.Kind == LocalPane {
		parent := filepath.Dir(pane.Path)
		if parent == pane.Path {
			return
		}
		pane.Enter(parent)
		b.loadLocal()
		return
	}

	if !b.session.Connected() || pane.Path == "/" {
		return
	}
	if err := b.session.ChangeDir(listing.ParentName); err != nil {
		b.setStatus(statusError, err.Error())
		return
	}
	wd, err := b.session.CurrentDir()
	if err != nil {
		wd = "/"
	}
	pane.Enter(wd)
	b.loadRemote()
}

func (b *Browser) beginUpload() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	if b.active != LocalPane {
		b.setStatus(statusInfo, "Select a local entry to upload")
		return nil
	}
	if !b.session.Connected() {
		b.setStatus(statusError, "Not connected")
		return nil
	}
	entry, ok := b.local.Selected()
	if !ok || entry.Name == listing.ParentName {
		return nil
	}

	b.pendingEntry = entry
	question := fmt.Sprintf("Upload '%s' (%s) to %s?", entry.Name, listing.FormatSize(entry.Size), b.remote.Path)
	if entry.IsDir {
		question = fmt.Sprintf("Upload folder '%s/' and everything in it to %s?", entry.Name, b.remote.Path)
	}
	b.modal = newConfirmModal(confirmUpload, question)
	return nil
}

func (b *Browser) beginDownload() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	if b.active != RemotePane {
		b.setStatus(statusInfo, "Select a remote entry to download")
		return nil
	}
	if !b.session.Connected() {
		b.setStatus(statusError, "Not connected")
		return nil
	}
	entry, ok := b.remote.Selected()
	if !ok || entry.Name == listing.ParentName {
		return nil
	}

	b.pendingEntry = entry
	question := fmt.Sprintf("Download '%s' (%s) to %s?", entry.Name, listing.FormatSize(entry.Size), b.local.Path)
	if entry.IsDir {
		question = fmt.Sprintf("Download folder '%s/' and everything in it to %s?", entry.Name, b.local.Path)
	}
	b.modal = newConfirmModal(confirmDownload, question)
	return nil
}

func (b *Browser) beginDelete() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	pane := b.activePane()
	if pane.Kind == RemotePane && !b.session.Connected() {
		b.setStatus(statusError, "Not connected")
		return nil
	}
	entry, ok := pane.Selected()
	if !ok || entry.Name == listing.ParentName {
		return nil
	}

	b.pendingEntry = entry
	name := entry.Name
	if entry.IsDir {
		name += "/ and everything in it"
	}
	b.modal = newConfirmModal(confirmDelete, fmt.Sprintf("Permanently delete '%s'?", name))
	return nil
}

func (b *Browser) beginRename() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	pane := b.activePane()
	if pane.Kind == RemotePane && !b.session.Connected() {
		b.setStatus(statusError, "Not connected")
		return nil
	}
	entry, ok := pane.Selected()
	if !ok || entry.Name == listing.ParentName {
		return nil
	}

	b.pendingEntry = entry
	b.modal = newPromptModal(promptRename, "Rename to", entry.Name)
	return nil
}

func (b *Browser) beginMkdir() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	if b.active == RemotePane && !b.session.Connected() {
		b.setStatus(statusError, "Not connected")
		return nil
	}
	b.modal = newPromptModal(promptMkdir, "New folder name", "")
	return nil
}

func (b *Browser) applyModalResult(result modalResult) tea.Cmd {
	switch {
	case result.confirmed:
		switch result.action {
		case confirmDelete:
			b.deletePending()
		case confirmUpload:
			return b.startTransfer(transfer.Upload)
		case confirmDownload:
			return b.startTransfer(transfer.Download)
		}

	case result.submitted:
		text := strings.TrimSpace(result.text)
		if text == "" {
			return nil
		}
		switch result.purpose {
		case promptRename:
			b.renamePending(text)
		case promptMkdir:
			b.makeDir(text)
		case promptSearch:
			b.search(text)
		case promptServer:
			b.applyServer(text)
		}
	}
	return nil
}

func (b *Browser) startTransfer(kind transfer.Kind) tea.Cmd {
	entry := b.pendingEntry
	err := b.engine.Start(transfer.Request{
		Kind:      kind,
		Name:      entry.Name,
		LocalDir:  b.local.Path,
		RemoteDir: b.remote.Path,
		IsDir:     entry.IsDir,
		Size:      entry.Size,
	})
	if errors.Is(err, transfer.ErrBusy) {
		b.setStatus(statusError, "Transfer in progress (x to cancel)")
		return nil
	}
	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Transfer failed to start: %v", err))
		return nil
	}

	verb := "Uploading"
	if kind == transfer.Download {
		verb = "Downloading"
	}
	b.setStatus(statusInfo, fmt.Sprintf("%s %s...", verb, entry.Name))
	return tick()
}

func (b *Browser) deletePending() {
	entry := b.pendingEntry
	pane := b.activePane()

	var err error
	if pane.Kind == LocalPane {
		err = os.RemoveAll(filepath.Join(pane.Path, entry.Name))
		b.loadLocal()
	} else {
		if entry.IsDir {
			err = b.session.RemoveAll(entry.Name)
		} else {
			err = b.session.Delete(entry.Name)
		}
		b.loadRemote()
	}

	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Delete failed: %v", err))
		return
	}
	b.setStatus(statusSuccess, fmt.Sprintf("Deleted %s", entry.Name))
}

func (b *Browser) renamePending(to string) {
	entry := b.pendingEntry
	if to == entry.Name {
		return
	}
	pane := b.activePane()

	var err error
	if pane.Kind == LocalPane {
		err = os.Rename(filepath.Join(pane.Path, entry.Name), filepath.Join(pane.Path, to))
		b.loadLocal()
	} else {
		err = b.session.Rename(entry.Name, to)
		b.loadRemote()
	}

	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Rename failed: %v", err))
		return
	}
	b.setStatus(statusSuccess, fmt.Sprintf("Renamed %s to %s", entry.Name, to))
}

func (b *Browser) makeDir(name string) {
	var err error
	if b.active == LocalPane {
		err = os.Mkdir(filepath.Join(b.local.Path, name), 0o755)
		b.loadLocal()
	} else {
		err = b.session.MakeDir(name)
		b.loadRemote()
	}

	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Create folder failed: %v", err))
		return
	}
	b.setStatus(statusSuccess, fmt.Sprintf("Created folder %s", name))
}

func (b *Browser) search(query string) {
	pane := b.activePane()
	matches := listing.Search(pane.Entries, query)
	if len(matches) == 0 {
		b.setStatus(statusInfo, fmt.Sprintf("No results for '%s'", query))
		return
	}
	pane.Cursor = matches[0]
	pane.EnsureVisible(b.listHeight())
	b.setStatus(statusSuccess, fmt.Sprintf("%d match(es) for '%s'", len(matches), query))
}

func (b *Browser) applyServer(text string) {
	host, portStr, err := net.SplitHostPort(text)
	port := b.session.Port
	if err != nil {
		host = text
	} else if p, perr := strconv.Atoi(portStr); perr == nil && p > 0 {
		port = p
	}
	if host == "" {
		b.setStatus(statusError, "Server host must not be empty")
		return
	}

	b.SetServer(host, port)
	b.setStatus(statusInfo, fmt.Sprintf("Server set to %s:%d (c to connect)", host, port))
}

func (b *Browser) viewRemoteFile() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	if b.active != RemotePane || !b.session.Connected() {
		return nil
	}
	entry, ok := b.remote.Selected()
	if !ok || entry.IsDir || entry.Name == listing.ParentName {
		return nil
	}
	if entry.Size > maxViewSize {
		b.setStatus(statusError, fmt.Sprintf("%s is too large to view (>%s)", entry.Name, listing.FormatSize(maxViewSize)))
		return nil
	}

	var buf bytes.Buffer
	if err := b.session.Retrieve(entry.Name, &buf); err != nil {
		b.setStatus(statusError, fmt.Sprintf("View failed: %v", err))
		return nil
	}

	b.viewer = viewport.New(b.width-4, b.height-5)
	b.viewer.SetContent(buf.String())
	b.viewName = entry.Name
	b.viewing = true
	return nil
}

func (b *Browser) editRemoteFile() tea.Cmd {
	if b.refuseWhileBusy() {
		return nil
	}
	if b.active != RemotePane || !b.session.Connected() {
		return nil
	}
	entry, ok := b.remote.Selected()
	if !ok || entry.IsDir || entry.Name == listing.ParentName {
		return nil
	}
	if entry.Size > maxViewSize {
		b.setStatus(statusError, fmt.Sprintf("%s is too large to edit (>%s)", entry.Name, listing.FormatSize(maxViewSize)))
		return nil
	}

	tmpPath := filepath.Join(os.TempDir(), entry.Name)
	f, err := os.Create(tmpPath)
	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Edit failed: %v", err))
		return nil
	}
	if err := b.session.Retrieve(entry.Name, f); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		b.setStatus(statusError, fmt.Sprintf("Edit failed: %v", err))
		return nil
	}
	f.Close()

	info, err := os.Stat(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		b.setStatus(statusError, fmt.Sprintf("Edit failed: %v", err))
		return nil
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
	}
	name := entry.Name
	opened := info.ModTime()

	c := exec.Command(editor, tmpPath)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editFinishedMsg{name: name, tmpPath: tmpPath, opened: opened, err: err}
	})
}

// finishEdit stores the edited file back only when the editor actually
// changed it, then drops the temp copy.
func (b *Browser) finishEdit(msg editFinishedMsg) tea.Cmd {
	defer os.Remove(msg.tmpPath)

	if msg.err != nil {
		b.setStatus(statusError, fmt.Sprintf("Editor failed: %v", msg.err))
		return nil
	}

	info, err := os.Stat(msg.tmpPath)
	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Edit failed: %v", err))
		return nil
	}
	if !info.ModTime().After(msg.opened) {
		b.setStatus(statusInfo, fmt.Sprintf("No changes to %s", msg.name))
		return nil
	}

	f, err := os.Open(msg.tmpPath)
	if err != nil {
		b.setStatus(statusError, fmt.Sprintf("Edit failed: %v", err))
		return nil
	}
	defer f.Close()

	if err := b.session.Store(msg.name, f); err != nil {
		b.setStatus(statusError, fmt.Sprintf("Save failed: %v", err))
		return nil
	}
	b.loadRemote()
	b.setStatus(statusSuccess, fmt.Sprintf("Saved %s to server", msg.name))
	return nil
}

// listHeight is the number of entry rows each pane can show.
func (b *Browser) listHeight() int {
	// Overhead: title(2) + pane chrome(5) + status(1) + help(1) + spacing(2)
	h := b.height - 11
	if h < 5 {
		h = 5
	}
	return h
}

func (b *Browser) View() string {
	if b.viewing {
		return b.viewerView()
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("FTP File Manager"))
	s.WriteString("\n\n")

	paneWidth := (b.width - 6) / 2
	if paneWidth < 30 {
		paneWidth = 30
	}
	height := b.listHeight()

	localView := b.renderPane(b.local, paneWidth, height)
	remoteView := b.renderPane(b.remote, paneWidth, height)
	if b.active == LocalPane {
		localView = activePaneStyle.Width(paneWidth).Render(localView)
		remoteView = inactivePaneStyle.Width(paneWidth).Render(remoteView)
	} else {
		localView = inactivePaneStyle.Width(paneWidth).Render(localView)
		remoteView = activePaneStyle.Width(paneWidth).Render(remoteView)
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, localView, "  ", remoteView))
	s.WriteString("\n")

	s.WriteString(b.statusLine())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(b.helpLine()))

	if b.modal != nil {
		s.WriteString("\n\n")
		s.WriteString(b.modal.view())
	}

	return s.String()
}

func (b *Browser) viewerView() string {
	var s strings.Builder
	s.WriteString(viewerTitleStyle.Render(fmt.Sprintf("Viewing %s", b.viewName)))
	s.WriteString("\n\n")
	s.WriteString(b.viewer.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓ scroll • q/esc close"))
	return s.String()
}

func (b *Browser) statusLine() string {
	if b.engine.Active() {
		st := b.engine.Snapshot()

		var pct float64
		var counter string
		switch {
		case st.FilesTotal > 0:
			pct = float64(st.FilesDone) / float64(st.FilesTotal)
			counter = fmt.Sprintf("%d/%d files", st.FilesDone, st.FilesTotal)
		case st.Total > 0:
			pct = float64(st.Bytes) / float64(st.Total)
			counter = fmt.Sprintf("%s/%s", listing.FormatSize(st.Bytes), listing.FormatSize(st.Total))
		default:
			counter = listing.FormatSize(st.Bytes)
		}

		verb := "Uploading"
		if st.Kind == transfer.Download {
			verb = "Downloading"
		}
		return fmt.Sprintf("%s %s %s  %s  %s  %s",
			infoStyle.Render(verb),
			st.Target,
			b.bar.ViewAs(pct),
			counter,
			formatSpeed(st.Speed),
			helpStyle.Render("(x to cancel)"))
	}

	if b.status == "" {
		return ""
	}
	switch b.statusKind {
	case statusSuccess:
		return successStyle.Render("✓ " + b.status)
	case statusError:
		return errorStyle.Render(b.status)
	default:
		return infoStyle.Render(b.status)
	}
}

func (b *Browser) helpLine() string {
	if !b.session.Connected() {
		return "tab: switch • enter: open • c: connect • s: set server • D: delete • r: rename • m: mkdir • f: search • q: quit"
	}
	return "tab: switch • enter: open • u: upload • d: download • D: delete • r: rename • m: mkdir • v: view • e: edit • f: search • R: refresh • c: disconnect • q: quit"
}

func (b *Browser) renderPane(p *Pane, width, height int) string {
	var s strings.Builder

	title := "Local"
	if p.Kind == RemotePane {
		title = "Remote"
		if !b.session.Connected() {
			title = "Remote (disconnected)"
		}
	}
	s.WriteString(paneTitleStyle.Render(title))
	s.WriteString("\n")

	s.WriteString(pathStyle.Render(fitPathTail(p.Path, width-4)))
	s.WriteString("\n\n")

	p.EnsureVisible(height)
	end := p.Scroll + height
	if end > len(p.Entries) {
		end = len(p.Entries)
	}

	for i := p.Scroll; i < end; i++ {
		entry := p.Entries[i]
		cursor := "  "
		style := itemStyle
		if p.Cursor == i && b.activePane() == p {
			cursor = "→ "
			style = selectedItemStyle
		}

		name := entry.Name
		if entry.IsDir {
			name += "/"
		}
		size := ""
		if !entry.IsDir && entry.Name != listing.ParentName {
			size = listing.FormatSize(entry.Size)
		}

		avail := width - 14
		if avail < 8 {
			avail = 8
		}
		name = runewidth.FillRight(fitName(name, avail), avail)

		s.WriteString(cursor + style.Render(fmt.Sprintf("%s %8s", name, size)))
		s.WriteString("\n")
	}

	return s.String()
}

// fitName truncates a name to the given display width, never splitting a
// rune and counting wide characters as two cells.
func fitName(name string, width int) string {
	if runewidth.StringWidth(name) <= width {
		return name
	}
	return runewidth.Truncate(name, width, "...")
}

// fitPathTail keeps the end of a path, which carries the useful part.
func fitPathTail(path string, width int) string {
	w := runewidth.StringWidth(path)
	if w <= width {
		return path
	}
	return runewidth.TruncateLeft(path, w-width+3, "...")
}

func formatSpeed(bytesSec float64) string {
	if bytesSec < 1024 {
		return fmt.Sprintf("%.0f B/s", bytesSec)
	} else if bytesSec < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesSec/1024)
	}
	return fmt.Sprintf("%.1f MB/s", bytesSec/(1024*1024))
}
