package routine

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies what a single routine step does.
type Kind string

const (
	KindOpenApp      Kind = "open_app"
	KindOpenWebsite  Kind = "open_website"
	KindShowMessage  Kind = "show_message"
	KindPlayMusic    Kind = "play_music"
	KindDelay        Kind = "delay"
	KindDoNotDisturb Kind = "do_not_disturb"
)

var allKinds = []Kind{
	KindOpenApp,
	KindOpenWebsite,
	KindShowMessage,
	KindPlayMusic,
	KindDelay,
	KindDoNotDisturb,
}

var kindSet = func() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(allKinds))
	for _, kind := range allKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// Kinds returns every supported action kind in display order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether the kind is one of the supported action kinds.
func (k Kind) Valid() bool {
	_, ok := kindSet[k]
	return ok
}

var titleCaser = cases.Title(language.English)

// Label returns a human-facing name for the kind ("open_app" -> "Open App").
func (k Kind) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(k), "_", " "))
}

// Params carries the kind-specific payload for an action. Only the fields
// relevant to the action's kind are populated; Validate enforces the shape.
type Params struct {
	AppPath string  `json:"app_path,omitempty"`
	URL     string  `json:"url,omitempty"`
	Title   string  `json:"title,omitempty"`
	Message string  `json:"message,omitempty"`
	Command string  `json:"command,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
}

// Action is one executable step within a routine.
type Action struct {
	Kind    Kind   `json:"action_type"`
	Params  Params `json:"parameters"`
	Enabled bool   `json:"enabled"`
}

// NewOpenApp builds an action that launches a desktop application.
func NewOpenApp(appPath string) (Action, error) {
	a := Action{Kind: KindOpenApp, Params: Params{AppPath: appPath}, Enabled: true}
	return a, a.Validate()
}

// NewOpenWebsite builds an action that opens a URL in the default browser.
func NewOpenWebsite(url string) (Action, error) {
	a := Action{Kind: KindOpenWebsite, Params: Params{URL: url}, Enabled: true}
	return a, a.Validate()
}

// NewShowMessage builds an action that displays a desktop message.
func NewShowMessage(title, message string) (Action, error) {
	a := Action{Kind: KindShowMessage, Params: Params{Title: title, Message: message}, Enabled: true}
	return a, a.Validate()
}

// NewPlayMusic builds an action that starts music playback from a URL or a
// shell command. Exactly one of the two may be empty.
func NewPlayMusic(url, command string) (Action, error) {
	a := Action{Kind: KindPlayMusic, Params: Params{URL: url, Command: command}, Enabled: true}
	return a, a.Validate()
}

// NewDelay builds an action that pauses the routine for the given seconds.
func NewDelay(seconds float64) (Action, error) {
	a := Action{Kind: KindDelay, Params: Params{Seconds: seconds}, Enabled: true}
	return a, a.Validate()
}

// NewDoNotDisturb builds an action that mutes system audio.
func NewDoNotDisturb() Action {
	return Action{Kind: KindDoNotDisturb, Enabled: true}
}

// Validate checks that the parameters satisfy the shape the kind requires.
func (a Action) Validate() error {
	switch a.Kind {
	case KindOpenApp:
		if strings.TrimSpace(a.Params.AppPath) == "" {
			return errors.New("open_app requires an app path")
		}
	case KindOpenWebsite:
		if strings.TrimSpace(a.Params.URL) == "" {
			return errors.New("open_website requires a url")
		}
	case KindShowMessage:
		if strings.TrimSpace(a.Params.Message) == "" {
			return errors.New("show_message requires message text")
		}
	case KindPlayMusic:
		if strings.TrimSpace(a.Params.URL) == "" && strings.TrimSpace(a.Params.Command) == "" {
			return errors.New("play_music requires a url or a command")
		}
	case KindDelay:
		if a.Params.Seconds < 0 {
			return errors.New("delay requires a non-negative seconds value")
		}
	case KindDoNotDisturb:
		// No parameters.
	default:
		return fmt.Errorf("unknown action kind %q", string(a.Kind))
	}
	return nil
}

// Describe returns a short human-readable summary of the action, used for
// progress output and the run journal.
func (a Action) Describe() string {
	switch a.Kind {
	case KindOpenApp:
		return "Opening " + filepath.Base(a.Params.AppPath)
	case KindOpenWebsite:
		return "Opening " + a.Params.URL
	case KindShowMessage:
		return "Showing message: " + a.Params.Message
	case KindPlayMusic:
		if a.Params.URL != "" {
			return "Playing music from " + a.Params.URL
		}
		return "Playing music via command"
	case KindDelay:
		return fmt.Sprintf("Waiting %g seconds", a.Params.Seconds)
	case KindDoNotDisturb:
		return "Enabling Do Not Disturb"
	}
	return "Unknown action"
}

// UnmarshalJSON decodes an action and rejects malformed payloads so a loaded
// document can never contain an action whose parameters do not match its kind.
// The enabled flag defaults to true when absent.
func (a *Action) UnmarshalJSON(data []byte) error {
	type wire struct {
		Kind    Kind   `json:"action_type"`
		Params  Params `json:"parameters"`
		Enabled *bool  `json:"enabled"`
	}
	var aux wire
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Kind = aux.Kind
	a.Params = aux.Params
	a.Enabled = aux.Enabled == nil || *aux.Enabled
	return a.Validate()
}
