package priority

import "time"

// RankAsync runs Rank on its own goroutine and delivers the result on the
// returned channel, which is closed after the single send. The snapshot is
// deep-copied before the goroutine starts, so the caller may keep mutating
// its own data structures while the ranking runs.
//
// Each call is independent: concurrent invocations don't coordinate, and
// every one runs to completion over its own snapshot. Which result to keep
// when several are in flight is the caller's policy (last write wins is
// the usual choice).
func RankAsync(snap Snapshot, now time.Time) <-chan []ScoredTask {
	copied := snap.Clone()
	out := make(chan []ScoredTask, 1)
	go func() {
		out <- Rank(copied, now)
		close(out)
	}()
	return out
}
