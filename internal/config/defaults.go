package config

const (
	defaultDataDir        = "~/.local/share/dailyflow"
	defaultLogDir         = "~/.local/share/dailyflow/logs"
	defaultStepGapSeconds = 0.5
	defaultOpenCommand    = "xdg-open"
	defaultNotifyCommand  = "notify-send"
	defaultMixerCommand   = "pactl"
	defaultMixerFallback  = "amixer"
	defaultShell          = "/bin/sh"
	defaultCrontabCommand = "crontab"
	defaultMarker         = "dailyflow"
	defaultRetentionDays  = 90
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Execution: Execution{
			StepGapSeconds: defaultStepGapSeconds,
		},
		Tools: Tools{
			OpenCommand:   defaultOpenCommand,
			NotifyCommand: defaultNotifyCommand,
			MixerCommand:  defaultMixerCommand,
			MixerFallback: defaultMixerFallback,
			Shell:         defaultShell,
		},
		Scheduler: Scheduler{
			CrontabCommand: defaultCrontabCommand,
			Marker:         defaultMarker,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
