package logger

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		log, err := New(env)
		if err != nil {
			t.Fatalf("%q: %v", env, err)
		}
		log.Info("logger ready")
		_ = log.Sync()
	}
}
