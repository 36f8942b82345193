package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Iron-Ham/foldlog/internal/dump"
)

// fileTimeLayout matches the timestamp the dump writer puts in file names.
const fileTimeLayout = "20060102-150405.000"

// Info contains summary information about a session file
type Info struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	PID     int       `json:"pid"`
	Dumps   int       `json:"dumps"`
	Size    int64     `json:"size"`
	// Live is true while the process that owns the file is still running
	Live bool `json:"live"`
	// Corrupt is true when the file is not a valid JSON array
	Corrupt bool `json:"corrupt"`
}

// ParseFileName extracts the creation time and owning process id from a
// session file name. It returns false for names the dump writer would not
// produce.
func ParseFileName(name string) (time.Time, int, bool) {
	base := filepath.Base(name)
	if !dump.IsSessionFile(base) {
		return time.Time{}, 0, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(base, dump.FilePrefix), dump.FileSuffix)
	ts, pidStr, ok := strings.Cut(stem, "_")
	if !ok {
		return time.Time{}, 0, false
	}
	created, err := time.ParseInLocation(fileTimeLayout, ts, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return time.Time{}, 0, false
	}
	return created, pid, true
}

// ListSessions returns information about all session files in dir, oldest
// first. A missing directory means no sessions.
func ListSessions(dir string) ([]*Info, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil // No dump directory = no sessions
	}

	files, err := dump.ListDumps(dir)
	if err != nil {
		return nil, err
	}

	var sessions []*Info
	for _, path := range files {
		info, err := GetSessionInfo(path)
		if err != nil {
			// Skip files we can't read
			continue
		}
		sessions = append(sessions, info)
	}

	return sessions, nil
}

// GetSessionInfo returns summary information about one session file.
func GetSessionInfo(path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path: path,
		Name: filepath.Base(path),
		Size: stat.Size(),
	}
	if created, pid, ok := ParseFileName(path); ok {
		info.Created = created
		info.PID = pid
		info.Live = isProcessAlive(pid)
	} else {
		info.Created = stat.ModTime()
	}

	// Count dumps from raw JSON
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		info.Corrupt = true
	} else {
		info.Dumps = len(elements)
	}

	return info, nil
}

// isProcessAlive reports whether pid names a running process.
func isProcessAlive(pid int) bool {
	// On Unix, sending signal 0 checks if process exists without affecting it
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil
}
