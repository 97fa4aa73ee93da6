package routine

// SampleRoutine returns the routine seeded on first run so a fresh install has
// something to list and execute.
func SampleRoutine() Routine {
	return Routine{
		Name:        "Morning Startup",
		Description: "Basic morning routine to get started",
		Enabled:     true,
		Actions: []Action{
			{Kind: KindShowMessage, Params: Params{Message: "Good morning! Starting your day..."}, Enabled: true},
			{Kind: KindDelay, Params: Params{Seconds: 2}, Enabled: true},
			{Kind: KindOpenWebsite, Params: Params{URL: "https://gmail.com"}, Enabled: true},
			{Kind: KindDelay, Params: Params{Seconds: 1}, Enabled: true},
			{Kind: KindShowMessage, Params: Params{Message: "All set! Have a productive day!"}, Enabled: true},
		},
	}
}
