package main

import (
	"fmt"

	"dailyflow/internal/routine"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func scheduleLabel(r routine.Routine) string {
	if !r.Scheduled() {
		return "-"
	}
	return r.ScheduledTime
}

func stepLabel(index int, action routine.Action) string {
	return fmt.Sprintf("%d. %s", index+1, action.Describe())
}
