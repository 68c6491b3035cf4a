package service

import "context"

// SendDigests mails the weekly summary to every signed-in session that has a
// snapshot and returns how many were sent.
func (s *Service) SendDigests(ctx context.Context) int {
	sent := 0
	for _, sess := range s.sessions.Active() {
		if ctx.Err() != nil {
			break
		}
		user := sess.State().User
		snap, derived := sess.Snapshot()
		if user == nil || snap == nil {
			continue
		}
		if err := s.mailer.SendDigest(user.Email, user.Username, derived, snap.AdvisoryText); err != nil {
			s.log.WithField("session", sess.ID).Warnf("Digest to %s failed: %v", user.Email, err)
			continue
		}
		sent++
	}
	s.log.Infof("Weekly digest sent to %d sessions", sent)
	return sent
}

// SweepSessions drops sessions idle for longer than the configured TTL.
func (s *Service) SweepSessions() int {
	removed := s.sessions.Sweep(s.config.SessionIdleTTL)
	if removed > 0 {
		s.log.Infof("Swept %d idle sessions", removed)
	}
	return removed
}
