package app

import "sync/atomic"

// Stats are process-wide usage counters, pushed to every live connection
// whenever they change. Purely informational; nothing reads them back.
type Stats struct {
	activeUsers   atomic.Int64
	totalSessions atomic.Int64
	totalLines    atomic.Int64
}

type StatsSnapshot struct {
	ActiveUsers   int64 `json:"active_users"`
	TotalSessions int64 `json:"total_sessions"`
	TotalLines    int64 `json:"total_lines_of_code"`
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) UserJoined() {
	s.activeUsers.Add(1)
	s.totalSessions.Add(1)
}

func (s *Stats) UserLeft() {
	s.activeUsers.Add(-1)
}

func (s *Stats) CodeEdited(lines int64) {
	s.totalLines.Add(lines)
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ActiveUsers:   s.activeUsers.Load(),
		TotalSessions: s.totalSessions.Load(),
		TotalLines:    s.totalLines.Load(),
	}
}
