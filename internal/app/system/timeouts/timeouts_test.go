package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	c := Current()
	if c.Short != DefaultShort || c.Content != DefaultContent {
		t.Errorf("defaults: got %+v", c)
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Medium: 20 * time.Second})
	if Medium() != 20*time.Second {
		t.Errorf("Medium: got %v, want 20s", Medium())
	}
	if Short() != DefaultShort {
		t.Errorf("Short: got %v, want default", Short())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("KOINONIA_TIMEOUT_CONTENT", "3s")
	t.Setenv("KOINONIA_TIMEOUT_SHORT", "not-a-duration")
	t.Setenv("KOINONIA_TIMEOUT_LONG", "-1s")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("configured: got %d, want 1", n)
	}
	if Content() != 3*time.Second {
		t.Errorf("Content: got %v, want 3s", Content())
	}
	if Short() != DefaultShort || Long() != DefaultLong {
		t.Error("invalid values should keep defaults")
	}
}
