package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestWarnf_Prefix(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Warnf("mask %s skipped", "binary/threshold/1")
	if got != "WARNING: mask binary/threshold/1 skipped" {
		t.Errorf("Warnf wrote %q", got)
	}
}

func TestComponent_PrefixAndLateBinding(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logf := Component("SSLEM")

	// Install the capture after the component logger was created.
	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	logf("labelled %d features", 3)
	if got != "[SSLEM] labelled 3 features" {
		t.Errorf("Component logger wrote %q", got)
	}
}
