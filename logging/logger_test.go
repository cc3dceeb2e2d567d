package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want logrus.Level
	}{
		{"default", Options{}, logrus.InfoLevel},
		{"errors only", Options{ErrorsOnly: true}, logrus.ErrorLevel},
		{"verbose wins", Options{ErrorsOnly: true, Verbose: true}, logrus.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.opts); got != tt.want {
				t.Errorf("Level(%+v) = %v, want %v", tt.opts, got, tt.want)
			}
		})
	}
}

func TestErrorsOnlySuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Options{ErrorsOnly: true, Out: &buf})
	l.Info("progress")
	l.WithField("phase", PhaseSchema).Error("broken")

	out := buf.String()
	if strings.Contains(out, "progress") {
		t.Errorf("info entry leaked in errors-only mode: %q", out)
	}
	if !strings.Contains(out, "broken") || !strings.Contains(out, "phase=schema") {
		t.Errorf("error entry missing: %q", out)
	}
}
