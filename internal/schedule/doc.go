// Package schedule maintains the OS-level triggers for routines with a
// scheduled time. Registrations are projected onto the user crontab as
// marked lines; everything else in the crontab is preserved untouched.
package schedule
