package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTracker_ConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Parsing", 50)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Tick()
		}()
	}
	wg.Wait()

	if got := tr.bar.State().CurrentNum; got != 50 {
		t.Errorf("CurrentNum = %d, want 50", got)
	}
	tr.Done()
}

func TestTracker_Spinner(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Parsing", 0)
	tr.Tick()
	tr.Tick()
	if got := tr.bar.State().CurrentNum; got != 2 {
		t.Errorf("CurrentNum = %d, want 2", got)
	}
	tr.Done()
}

func TestTracker_Fail(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Parsing", 3)
	tr.Fail(errors.New("boom"))

	if !strings.Contains(buf.String(), "Parsing failed: boom") {
		t.Errorf("output = %q", buf.String())
	}
}
