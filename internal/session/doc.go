// Package session runs the module loggers of one application run.
//
// A Session opens a module registry, hands out loggers configured from the
// config file, writes dumps to one session file and publishes what it does
// on an event bus:
//
//	s, err := session.Open(cfg, session.Options{})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	net, _ := s.Logger("net")
//	net.Info("connected")
//
// It also lists the session files in a dump directory with ListSessions.
package session
