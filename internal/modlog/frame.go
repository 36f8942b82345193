package modlog

// Frame capture moves through three states:
//
//	Idle --StartFrame / InFrame / AppendFrameTitle--> Open --EndFrame--> Closed
//
// A closed frame stays readable through Frame until the next frame opens.

// StartFrame opens a new frame. A frame that is still open is ended first.
func (l *Logger) StartFrame() {
	l.mu.Lock()
	closed, ok := l.closeFrameLocked()
	l.openFrameLocked()
	l.mu.Unlock()

	if ok && closed.print {
		l.emit(closed.entry)
	}
}

// InFrame appends one detail line to the open frame, opening one if needed.
func (l *Logger) InFrame(detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ensureOpenLocked()
	l.frame.appendDetail(detail)
}

// AppendFrameTitle appends text to the open frame's title, opening a frame if
// needed.
func (l *Logger) AppendFrameTitle(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ensureOpenLocked()
	l.frame.Title += text
}

// EndFrame closes the open frame and archives it according to the FRAME_ONLY
// thresholds. Without an open frame it does nothing.
func (l *Logger) EndFrame() {
	l.mu.Lock()
	closed, ok := l.closeFrameLocked()
	l.mu.Unlock()

	if ok && closed.print {
		l.emit(closed.entry)
	}
}

// Frame returns a copy of the current frame. While the frame is open the
// copy has IsComplete false and must be treated as provisional. ok is false
// if no frame was ever opened since the last Start.
func (l *Logger) Frame() (frame FrameLog, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.frame == nil {
		return FrameLog{}, false
	}
	return *l.frame, true
}

// FrameOpen reports whether a frame is being captured.
func (l *Logger) FrameOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame != nil && !l.frame.IsComplete
}

func (l *Logger) ensureOpenLocked() {
	if l.frame == nil || l.frame.IsComplete {
		l.openFrameLocked()
	}
}

func (l *Logger) openFrameLocked() {
	l.frame = &FrameLog{}
	l.frameOpenedAt = l.clock.Micros()
	l.frameNumber = l.clock.Frame()
}

// closeFrameLocked marks the open frame complete and archives the entry that
// represents it. The caller prints the entry after releasing the lock.
func (l *Logger) closeFrameLocked() (closedFrame, bool) {
	if l.frame == nil || l.frame.IsComplete {
		return closedFrame{}, false
	}
	l.frame.IsComplete = true
	snapshot := *l.frame
	e := Entry{
		Timestamp:   l.frameOpenedAt,
		Level:       LevelFrameOnly,
		Module:      l.id,
		FrameNumber: l.frameNumber,
		Frame:       &snapshot,
	}
	if l.archiveLevel.Allows(LevelFrameOnly) {
		l.frames.Push(e)
	}
	return closedFrame{entry: e, print: l.printLevel.Allows(LevelFrameOnly)}, true
}

type closedFrame struct {
	entry Entry
	print bool
}

