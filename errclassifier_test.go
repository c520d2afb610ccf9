// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/bassosimone/errclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultErrClassifier(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, ""},
		{"deadline", context.DeadlineExceeded, errclass.ETIMEDOUT},
		{"reader failure", errFakeRead, errclass.EGENERIC},
		{"wrapped reader failure", fmt.Errorf("a.out: reading symbols: %w", errFakeRead), errclass.EGENERIC},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultErrClassifier.Classify(tc.err))
		})
	}
}

// Opening a missing image is a common Read failure.
func TestDefaultErrClassifierMissingImage(t *testing.T) {
	_, err := os.Open("/nonexistent/a.out")
	require.Error(t, err)

	assert.NotEmpty(t, DefaultErrClassifier.Classify(err))
}

// The classifier from Config labels Done events of failing slots.
func TestErrClassifierFunc(t *testing.T) {
	var got []error
	cfg := NewConfig()
	cfg.ErrClassifier = ErrClassifierFunc(func(err error) string {
		got = append(got, err)
		if err == nil {
			return ""
		}
		return "ECUSTOM"
	})
	logger, records := newCapturingLogger()
	tracer := NewTracer(cfg, logger)
	reader := &fakeReader{readErr: errFakeRead}
	m := tracer.Load("a.out", reader.table(1<<uint(SlotRead)), nil)
	tracer.SetEnabled(true)

	_ = m.Ops().Read(m, 0)
	reader.readErr = nil
	_ = m.Ops().Read(m, 0)

	assert.Equal(t, []error{errFakeRead, nil}, got)
	var classes []string
	for _, r := range *records {
		if r.Message == "symReadDone" {
			classes = append(classes, recordAttrs(r)["errClass"].String())
		}
	}
	assert.Equal(t, []string{"ECUSTOM", ""}, classes)
}
