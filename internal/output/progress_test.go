package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBarSilentUntilDone(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Installing Budget Tracker")
	p.SetWriter(buf)

	p.SetPercent(25)
	p.SetPercent(60)
	// A pipe gets no intermediate redraws, only the completion line.
	assert.Empty(t, buf.String())

	p.SetPercent(100)
	out := buf.String()
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Installing Budget Tracker")
	assert.Contains(t, out, "[")
}

func TestProgressBarClampsPercent(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Updating Old Tool")
	p.SetWriter(buf)

	p.SetPercent(150)
	assert.Contains(t, buf.String(), "100%")

	buf.Reset()
	p2 := NewProgress("Updating Old Tool")
	p2.SetWriter(buf)
	p2.SetPercent(-10)
	assert.Empty(t, buf.String())
}

func TestProgressBarFinishEmitsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Installing Budget Tracker")
	p.SetWriter(buf)

	p.SetPercent(100)
	p.Finish()

	assert.Equal(t, 1, strings.Count(buf.String(), "100%"))
}

func TestProgressBarFinishWithoutUpdates(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Installing Budget Tracker")
	p.SetWriter(buf)

	p.Finish()

	assert.Contains(t, buf.String(), "100%")
}

func TestSpinnerPrintsMessageOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Refreshing catalog")
	s.SetWriter(buf)

	s.Start()
	s.Start()
	assert.Equal(t, "Refreshing catalog...\n", buf.String())

	s.Stop()
	assert.Equal(t, "Refreshing catalog...\n", buf.String())
}

func TestSpinnerStopWithMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Refreshing catalog")
	s.SetWriter(buf)

	s.Start()
	s.StopWithMessage("Catalog refreshed")

	out := buf.String()
	assert.Contains(t, out, "Refreshing catalog...")
	assert.Contains(t, out, "Catalog refreshed")
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Refreshing catalog")
	s.SetWriter(buf)

	s.Stop()
	assert.Empty(t, buf.String())
}
