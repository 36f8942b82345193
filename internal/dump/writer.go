package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Iron-Ham/foldlog/internal/errors"
	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/modlog"
)

const (
	defaultFileMode = 0644
	defaultDirMode  = 0755

	// FilePrefix and FileSuffix frame every session file name.
	FilePrefix = "dump_"
	FileSuffix = ".json"

	// DefaultLatestName is the mirror file written in dev mode.
	DefaultLatestName = "latest.json"

	fileTimeLayout = "20060102-150405.000"
)

var (
	headBytes    = []byte("[\n")
	trailerBytes = []byte("\n]")
	sepBytes     = []byte(",\n")
)

// Notifier is told when a dump worth showing to an interactive viewer has
// been written. Calls are fire-and-forget.
type Notifier interface {
	DumpReady(path string, reason Reason)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(path string, reason Reason)

// DumpReady implements Notifier.
func (f NotifierFunc) DumpReady(path string, reason Reason) { f(path, reason) }

// WriterOptions configures a Writer.
type WriterOptions struct {
	// DevMode mirrors the whole session file to LatestName after each save.
	DevMode bool
	// LatestName is the mirror file name inside the dump directory.
	LatestName string
	// Notifier is told about dumps whose reason notifies.
	Notifier Notifier
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Writer appends dumps to one session file. The file is created on the first
// save and named after that moment and the process id, so names sort by
// creation time.
type Writer struct {
	dir  string
	opts WriterOptions

	mu    sync.Mutex
	path  string
	saved int
}

// NewWriter creates a Writer for a session file in dir.
func NewWriter(dir string, opts WriterOptions) *Writer {
	if opts.LatestName == "" {
		opts.LatestName = DefaultLatestName
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Writer{dir: dir, opts: opts}
}

// Dir returns the dump directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns the session file path, or "" before the first save.
func (w *Writer) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Saved returns the number of dumps this writer appended.
func (w *Writer) Saved() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saved
}

// SessionFileName returns the session file name for a session started at t
// by process pid.
func SessionFileName(t time.Time, pid int) string {
	return fmt.Sprintf("%s%s_%d%s", FilePrefix, t.Format(fileTimeLayout), pid, FileSuffix)
}

// Save appends one dump built from snaps to the session file and returns the
// file's path. In dev mode the session file is then mirrored to the latest
// path. The notifier is called unless the reason does not notify.
func (w *Writer) Save(snaps map[string]modlog.Snapshot, reason Reason) (string, error) {
	now := w.opts.Now()
	data, err := json.Marshal(NewDump(snaps, reason, now))
	if err != nil {
		return "", errors.NewDumpError("encode dump", err)
	}

	w.mu.Lock()
	if w.path == "" {
		if err := os.MkdirAll(w.dir, defaultDirMode); err != nil {
			w.mu.Unlock()
			return "", errors.NewDumpError("create dump directory", err).WithPath(w.dir)
		}
		w.path = filepath.Join(w.dir, SessionFileName(now, os.Getpid()))
	}
	path := w.path
	w.mu.Unlock()

	if err := AppendToSession(path, data); err != nil {
		w.opts.Logger.WithDump(path).Error("failed to append dump", "reason", reason, "error", err)
		return "", err
	}

	w.mu.Lock()
	w.saved++
	index := w.saved - 1
	w.mu.Unlock()

	log := w.opts.Logger.WithDump(path)
	log.Info("dump saved", "reason", reason, "modules", len(snaps), "index", index)

	if w.opts.DevMode {
		latest := filepath.Join(w.dir, w.opts.LatestName)
		if err := mirror(path, latest); err != nil {
			// The session file is intact; only the mirror is stale.
			log.Warn("failed to mirror session file", "latest", latest, "error", err)
		}
	}
	if reason.Notifies() && w.opts.Notifier != nil {
		w.opts.Notifier.DumpReady(path, reason)
	}
	return path, nil
}

// pathLocks serializes appends per session file across every Writer in the
// process.
var pathLocks sync.Map // path -> *sync.Mutex

func lockFor(path string) *sync.Mutex {
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AppendToSession appends one encoded dump to the JSON array in path. An
// empty or missing file gets "[\n" + dump + "\n]". Otherwise the trailing
// "\n]" is overwritten with ",\n" + dump + "\n]", so the file is a valid
// array after every append. A file that does not end in "\n]" is left
// untouched and ErrCorruptSessionFile is returned.
func AppendToSession(path string, dump []byte) error {
	mu := lockFor(path)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, defaultFileMode)
	if err != nil {
		return errors.NewDumpError("open session file", err).WithPath(path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return errors.NewDumpError("stat session file", err).WithPath(path)
	}

	var buf bytes.Buffer
	offset := info.Size()
	if offset == 0 {
		buf.Write(headBytes)
	} else {
		tail := make([]byte, len(trailerBytes))
		if offset < int64(len(headBytes)+len(trailerBytes)) {
			return errors.NewDumpError("session file too short", errors.ErrCorruptSessionFile).WithPath(path)
		}
		if _, err := f.ReadAt(tail, offset-int64(len(tail))); err != nil {
			return errors.NewDumpError("read session file trailer", err).WithPath(path)
		}
		if !bytes.Equal(tail, trailerBytes) {
			return errors.NewDumpError("session file does not end with array trailer", errors.ErrCorruptSessionFile).WithPath(path)
		}
		offset -= int64(len(trailerBytes))
		buf.Write(sepBytes)
	}
	buf.Write(dump)
	buf.Write(trailerBytes)

	if _, err := f.WriteAt(buf.Bytes(), offset); err != nil {
		return errors.NewDumpError("write session file", err).WithPath(path)
	}
	if err := f.Sync(); err != nil {
		return errors.NewDumpError("sync session file", err).WithPath(path)
	}
	return nil
}

// mirror copies src to dst through a temporary file so readers of dst never
// see a partial copy.
func mirror(src, dst string) error {
	mu := lockFor(src)
	mu.Lock()
	data, err := os.ReadFile(src)
	mu.Unlock()
	if err != nil {
		return err
	}

	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, defaultFileMode); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
