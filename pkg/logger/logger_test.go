package logger

import "testing"

func TestInitLevels(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"DEBUG":   "debug",
		"info":    "info",
		"warn":    "warn",
		"warning": "warn",
		"error":   "error",
		"fatal":   "fatal",
		"":        "info",
		"bogus":   "info",
	}
	for in, want := range cases {
		Init(in)
		if got := LevelString(); got != want {
			t.Fatalf("Init(%q): got level %q want %q", in, got, want)
		}
	}
	Init("info")
}

func TestEnabledRespectsLevel(t *testing.T) {
	Init("warn")
	defer Init("info")

	if enabled(LevelDebug) || enabled(LevelInfo) {
		t.Fatal("debug/info should be suppressed at warn level")
	}
	if !enabled(LevelWarn) || !enabled(LevelError) {
		t.Fatal("warn/error should be enabled at warn level")
	}
}
