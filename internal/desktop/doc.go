// Package desktop wraps the host OS facilities that routine actions invoke:
// launching applications, opening URLs, showing notifications, starting music
// playback, and muting audio.
//
// The Capabilities interface keeps the executor testable against a fake; the
// System implementation shells out to the commands named in configuration
// (xdg-open, notify-send, pactl by default). Launches are fire-and-forget:
// the executor never waits for a launched process to exit.
package desktop
