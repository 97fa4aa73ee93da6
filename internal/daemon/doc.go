// Package daemon hosts the resident scheduler. It binds the routine store,
// the executor, and the run journal into a single lifecycle with flock-based
// locking to prevent multiple instances firing the same schedules.
package daemon
