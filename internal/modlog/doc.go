// Package modlog implements per-module loggers with two independent
// thresholds.
//
// Every module owns a Logger. A message at level L is retained in the
// logger's history when the archive threshold allows L and is emitted live
// when the print threshold allows L; the two decisions are independent, so a
// module can print only errors while retaining everything down to VERBOSE.
// Retained histories are fixed-capacity ring buffers: when full, the oldest
// entry is overwritten.
//
// Frames group multi-line diagnostic detail for one logical tick:
//
//	log.StartFrame()
//	log.AppendFrameTitle("tick 42")
//	log.InFrame("queue depth 3")
//	log.EndFrame()
//
// A printed error can request a dump of every module's history through the
// dump hook. Loggers are normally created through a Registry so that they
// share one clock and can be snapshotted together.
package modlog
