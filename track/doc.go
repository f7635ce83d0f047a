// Package track provides in-flight request tracking and coordinated
// graceful shutdown.
//
// A Tracker records which requests are currently executing. A Coordinator
// runs registered cleanup hooks in priority order under a hard deadline;
// DrainHook bridges the two, holding shutdown open until the tracker
// empties or the deadline abandons what remains.
package track
