package modlog

// FrameLog is one logical tick of frame-scoped capture. Title and Details are
// built incrementally while the frame is open; IsComplete is set when the
// frame ends. A copy read while the frame is open is provisional.
type FrameLog struct {
	Title      string `json:"title"`
	Details    string `json:"details"`
	IsComplete bool   `json:"is_complete"`
}

// appendDetail adds one detail line, newline-joined.
func (f *FrameLog) appendDetail(detail string) {
	if f.Details == "" {
		f.Details = detail
		return
	}
	f.Details += "\n" + detail
}

// Entry is one leveled record. Entries are immutable once pushed into a
// history buffer. Module is not part of the persisted entry; it is restored
// from the owning logger's key when a dump is loaded.
type Entry struct {
	Timestamp   int64     `json:"timestamp"` // monotonic microseconds
	Level       Level     `json:"level"`
	Module      string    `json:"-"`
	Message     string    `json:"message"`
	FrameNumber int64     `json:"frame_number"`
	Frame       *FrameLog `json:"current_frame"`
}

// IsFrame reports whether the entry is a frame snapshot.
func (e Entry) IsFrame() bool {
	return e.Level == LevelFrameOnly
}

// Text returns the entry's display text: the message, or the frame title for
// frame snapshots.
func (e Entry) Text() string {
	if e.IsFrame() && e.Frame != nil {
		return e.Frame.Title
	}
	return e.Message
}
