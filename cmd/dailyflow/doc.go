// Package main hosts the DailyFlow CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into routine
// store operations, routine execution, crontab schedule maintenance, run
// history queries, and configuration scaffolding. The root command also
// carries the flags the OS task scheduler invokes (--routine,
// --list-routines), so a crontab entry and an interactive shell share one
// binary and one code path.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
