package routine_test

import (
	"encoding/json"
	"testing"

	"dailyflow/internal/routine"
)

func TestActionConstructorsValidateShape(t *testing.T) {
	if _, err := routine.NewOpenApp(""); err == nil {
		t.Fatal("expected error for empty app path")
	}
	if _, err := routine.NewOpenWebsite("  "); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := routine.NewShowMessage("DailyFlow", ""); err == nil {
		t.Fatal("expected error for empty message")
	}
	if _, err := routine.NewPlayMusic("", ""); err == nil {
		t.Fatal("expected error when music has neither url nor command")
	}
	if _, err := routine.NewDelay(-1); err == nil {
		t.Fatal("expected error for negative delay")
	}

	delay, err := routine.NewDelay(0)
	if err != nil {
		t.Fatalf("zero delay should be valid: %v", err)
	}
	if !delay.Enabled {
		t.Fatal("constructed actions should be enabled")
	}
	if err := routine.NewDoNotDisturb().Validate(); err != nil {
		t.Fatalf("do_not_disturb should need no parameters: %v", err)
	}
}

func TestActionUnmarshalRejectsBadShape(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unknown kind", `{"action_type":"teleport","parameters":{}}`},
		{"delay negative", `{"action_type":"delay","parameters":{"seconds":-3}}`},
		{"open_app missing path", `{"action_type":"open_app","parameters":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a routine.Action
			if err := json.Unmarshal([]byte(tc.data), &a); err == nil {
				t.Fatalf("expected unmarshal error for %s", tc.data)
			}
		})
	}
}

func TestActionUnmarshalDefaultsEnabled(t *testing.T) {
	var a routine.Action
	data := `{"action_type":"show_message","parameters":{"message":"hi"}}`
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !a.Enabled {
		t.Fatal("enabled should default to true when absent")
	}

	data = `{"action_type":"show_message","parameters":{"message":"hi"},"enabled":false}`
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Enabled {
		t.Fatal("explicit enabled=false should stick")
	}
}

func TestKindLabels(t *testing.T) {
	cases := map[routine.Kind]string{
		routine.KindOpenApp:      "Open App",
		routine.KindDoNotDisturb: "Do Not Disturb",
	}
	for kind, want := range cases {
		if got := kind.Label(); got != want {
			t.Fatalf("label for %s: got %q want %q", kind, got, want)
		}
	}
}

func TestRoutineValidate(t *testing.T) {
	r := routine.Routine{Name: "Morning", Enabled: true}
	if err := r.Validate(); err != nil {
		t.Fatalf("minimal routine should validate: %v", err)
	}

	r.ScheduledTime = "25:00"
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for invalid hour")
	}
	r.ScheduledTime = "07:30"
	if err := r.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	r.Name = "   "
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestParseScheduledTime(t *testing.T) {
	hour, minute, err := routine.ParseScheduledTime("06:45")
	if err != nil || hour != 6 || minute != 45 {
		t.Fatalf("got %d:%d err=%v", hour, minute, err)
	}
	for _, bad := range []string{"", "7", "7:5x", "-1:00", "12:60"} {
		if _, _, err := routine.ParseScheduledTime(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
