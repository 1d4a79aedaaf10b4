// Package session manages a single subprocess behind a pseudo-terminal: PTY
// lifecycle, a reader goroutine that feeds a VT100 emulator, atomic
// dirty-tracking with a cached screen snapshot, and the attached/detached
// lifecycle a Manager switches between.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/ehayes2000/shepherd/internal/sharedsize"
	"github.com/ehayes2000/shepherd/internal/vt100"
)

// readChunk is the read size per PTY read syscall.
const readChunk = 8192

// ErrDetached is returned by WriteInput when the session is not attached.
var ErrDetached = errors.New("session: write to detached session")

// Session is one child process behind a PTY. It owns the PTY master, a VT100
// parser fed by its reader goroutine, and a cached screen
// snapshot the manager's render path reads lock-free.
type Session struct {
	// ID is an internal correlation handle for log lines; not user-visible.
	ID uuid.UUID

	Name string
	Path string

	size *sharedsize.Size

	ptyFile *os.File
	cmd     *exec.Cmd

	writerMu sync.Mutex

	parser   *vt100.Parser
	parserMu sync.Mutex

	dirty         atomic.Bool
	cachedScreen  atomic.Pointer[[][]vt100.Cell]
	cachedCursorY atomic.Int64
	cachedCursorX atomic.Int64

	attached atomic.Bool

	observer atomic.Pointer[OutputObserver]

	sessionErr atomic.Pointer[string]

	shutdownOnce sync.Once
	shutdownCh   chan struct{}

	readerWg sync.WaitGroup

	logger *slog.Logger
}

// New opens a PTY at size, spawns command/args in cwd with env, and starts
// the reader goroutine. The returned Session begins Attached.
func New(command string, args []string, cwd string, env []string, rows, cols uint16, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(command, args...)
	cmd.Dir = cwd
	if env != nil {
		cmd.Env = env
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("open pty for %s: %w", command, err)
	}

	s := &Session{
		ID:         uuid.New(),
		Name:       "",
		Path:       cwd,
		size:       sharedsize.New(rows, cols),
		ptyFile:    ptmx,
		cmd:        cmd,
		parser:     vt100.New(int(rows), int(cols)),
		shutdownCh: make(chan struct{}),
		logger:     logger,
	}
	s.attached.Store(true)

	s.readerWg.Add(1)
	go s.readerLoop()

	return s, nil
}

// readerLoop is the session's dedicated reader thread: it owns the parser
// exclusively, resizes the PTY/parser when SharedSize changes, and marks the
// session dead on EOF or read error.
func (s *Session) readerLoop() {
	defer s.readerWg.Done()

	buf := make([]byte, readChunk)
	for {
		select {
		case <-s.shutdownCh:
			return
		default:
		}

		n, err := s.ptyFile.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.setError("Process exited")
			} else {
				s.setError(classifyReadError(err))
			}
			return
		}
		if n == 0 {
			continue
		}

		rows, cols := s.size.Load()
		if curRows, curCols := s.parser.Size(); rows != 0 && cols != 0 && (int(rows) != curRows || int(cols) != curCols) {
			if err := pty.Setsize(s.ptyFile, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
				s.setError(fmt.Sprintf("resize pty: %v", err))
				return
			}
			s.parser.SetSize(int(rows), int(cols))
		}

		data := append([]byte(nil), buf[:n]...)
		s.respondToTerminalQueries(data)
		s.parser.Process(data)
		s.dirty.Store(true)

		if fn := s.observer.Load(); fn != nil {
			(*fn)(data)
		}
	}
}

// classifyReadError turns a raw read error into the ChildGone/TransientIO
// message recorded in session_error; PTY master reads return EIO once the
// child exits on Linux, which we treat the same as EOF.
func classifyReadError(err error) string {
	if errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EIO) {
		return "Process exited"
	}
	return fmt.Sprintf("read error: %v", err)
}

func (s *Session) setError(msg string) {
	s.sessionErr.CompareAndSwap(nil, &msg)
}

// respondToTerminalQueries answers unhandled CSI device-status/attribute
// queries the emulator doesn't itself intercept, per the DSR/DA protocol the
// child expects a real terminal to implement.
func (s *Session) respondToTerminalQueries(data []byte) {
	row, col := s.parser.CursorPosition()
	responses := [][2][]byte{
		{[]byte("\x1b[5n"), []byte("\x1b[0n")},
		{[]byte("\x1b[6n"), []byte(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))},
		{[]byte("\x1b[c"), []byte("\x1b[?62;1;2;6;22c")},
		{[]byte("\x1b[0c"), []byte("\x1b[?62;1;2;6;22c")},
		{[]byte("\x1b[>c"), []byte("\x1b[>0;0;0c")},
		{[]byte("\x1b[?6n"), []byte(fmt.Sprintf("\x1b[?%d;%dR", row+1, col+1))},
	}
	for _, r := range responses {
		if bytes.Contains(data, r[0]) {
			_, _ = s.writeRaw(r[1])
		}
	}
}

// OutputObserver receives each chunk of child output, on the reader
// goroutine. Observers must be fast and must synchronize their own state.
type OutputObserver func([]byte)

// SetOutputObserver installs fn to watch the output stream. Chunks read
// before the observer is installed are not replayed.
func (s *Session) SetOutputObserver(fn OutputObserver) {
	s.observer.Store(&fn)
}

// WriteInput writes bytes to the child. Only valid while Attached.
func (s *Session) WriteInput(data []byte) error {
	if !s.attached.Load() {
		return ErrDetached
	}
	_, err := s.writeRaw(data)
	return err
}

func (s *Session) writeRaw(data []byte) (int, error) {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()
	n, err := s.ptyFile.Write(data)
	if err == nil {
		return n, nil
	}
	return n, fmt.Errorf("write pty: %w", err)
}

// Screen is a lock-free snapshot of the session's emulator state at the time
// of the last GetScreen call that observed dirty.
type Screen struct {
	Cells    [][]vt100.Cell
	CursorY  int
	CursorX  int
}

// GetScreen returns the current cached screen snapshot, refreshing it first
// if dirty is set. The parser mutex is held only for the clone.
func (s *Session) GetScreen() Screen {
	if s.dirty.CompareAndSwap(true, false) {
		s.parserMu.Lock()
		cells := s.parser.Cells()
		y, x := s.parser.CursorPosition()
		s.parserMu.Unlock()

		s.cachedScreen.Store(&cells)
		s.cachedCursorY.Store(int64(y))
		s.cachedCursorX.Store(int64(x))
	}

	cells := s.cachedScreen.Load()
	if cells == nil {
		return Screen{}
	}
	return Screen{
		Cells:   *cells,
		CursorY: int(s.cachedCursorY.Load()),
		CursorX: int(s.cachedCursorX.Load()),
	}
}

// Resize updates the shared size and applies it to the PTY and parser
// immediately, so a child that is not producing output still learns the new
// dimensions. The reader loop's per-read size check remains as a backstop.
func (s *Session) Resize(rows, cols uint16) {
	s.size.Store(rows, cols)
	if rows == 0 || cols == 0 {
		return
	}
	if err := pty.Setsize(s.ptyFile, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return
	}
	s.parser.SetSize(int(rows), int(cols))
	s.dirty.Store(true)
}

// Size returns the dimensions last recorded via Resize or construction.
func (s *Session) Size() (rows, cols uint16) {
	return s.size.Load()
}

// SetScrollback moves the emulator's visible window n lines up from the
// live bottom and marks the screen dirty so the next snapshot reflects it.
func (s *Session) SetScrollback(n int) {
	s.parserMu.Lock()
	s.parser.SetScrollback(n)
	s.parserMu.Unlock()
	s.dirty.Store(true)
}

// Detach marks the session as not user-visible. The reader goroutine keeps
// running; only visibility and WriteInput eligibility change.
func (s *Session) Detach() {
	s.attached.Store(false)
}

// Attach marks the session as user-visible again.
func (s *Session) Attach() {
	s.attached.Store(true)
}

// IsAttached reports whether the session is currently Attached.
func (s *Session) IsAttached() bool {
	return s.attached.Load()
}

// IsDead reports whether the reader thread has recorded a terminal error.
func (s *Session) IsDead() bool {
	return s.sessionErr.Load() != nil
}

// Err returns the recorded terminal error, or nil if still alive.
func (s *Session) Err() error {
	if msg := s.sessionErr.Load(); msg != nil {
		return errors.New(*msg)
	}
	return nil
}

// Shutdown signals the reader goroutine to stop and kills the child.
// Idempotent: safe to call more than once.
func (s *Session) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
		if s.cmd != nil && s.cmd.Process != nil {
			if err := s.cmd.Process.Kill(); err != nil {
				s.logger.Warn("kill session child", "name", s.Name, "error", err)
			}
			_ = s.cmd.Wait()
		}
		if s.ptyFile != nil {
			_ = s.ptyFile.Close()
		}
		s.readerWg.Wait()
		s.setError("shut down")
	})
}
