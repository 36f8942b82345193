// Package watch reports session files as they are written to a dump
// directory. Detections are delivered to a callback, to the event bus as
// DumpDetectedEvent, or both.
package watch
