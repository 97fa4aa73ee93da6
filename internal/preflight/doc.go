// Package preflight provides readiness checks for the filesystem paths and
// external desktop tools DailyFlow depends on.
//
// These checks run in two contexts:
//   - The daemon runs them on startup so a misconfigured host is reported
//     before the first scheduled routine fires.
//   - The CLI "dailyflow doctor" command uses them to display host health.
package preflight
