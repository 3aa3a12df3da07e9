package output

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sokoni-market/sokoni-cli/internal/testutil"
)

func TestNewScreen_BufferIsNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)
	testutil.AssertFalse(t, s.tty)
	testutil.AssertTrue(t, s.Writer() == &buf)
}

func TestScreenFrame_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)
	updated := time.Date(2026, 3, 14, 9, 5, 7, 0, time.UTC)

	s.Frame(updated, 30*time.Second)

	out := buf.String()
	testutil.AssertContains(t, out, "Last update: 09:05:07")
	testutil.AssertContains(t, out, "Next refresh in 30s")
	testutil.AssertFalse(t, strings.Contains(out, "\033["))
}

func TestScreenFrame_TerminalClears(t *testing.T) {
	var buf bytes.Buffer
	s := &Screen{out: &buf, tty: true}

	s.Frame(time.Now(), time.Minute)

	testutil.AssertTrue(t, strings.HasPrefix(buf.String(), clearScreen))
	testutil.AssertContains(t, buf.String(), "Next refresh in 1m0s")
}

func TestScreenWatch_StopsOnCancel(t *testing.T) {
	var buf, errBuf bytes.Buffer
	s := &Screen{out: &buf, tty: true}
	ctx, cancel := context.WithCancel(context.Background())

	draws := 0
	err := s.Watch(ctx, 5*time.Millisecond, &errBuf, func(context.Context) error {
		draws++
		if draws == 3 {
			cancel()
		}
		return nil
	})

	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, draws, 3)
	out := buf.String()
	testutil.AssertTrue(t, strings.HasPrefix(out, hideCursor))
	testutil.AssertTrue(t, strings.HasSuffix(out, showCursor))
	testutil.AssertContains(t, out, "Watch mode ended.")
	testutil.AssertEqual(t, errBuf.String(), "")
}

func TestScreenWatch_ReportsDrawErrors(t *testing.T) {
	var buf, errBuf bytes.Buffer
	s := NewScreen(&buf)
	ctx, cancel := context.WithCancel(context.Background())

	draws := 0
	_ = s.Watch(ctx, 5*time.Millisecond, &errBuf, func(context.Context) error {
		draws++
		if draws == 2 {
			cancel()
			return nil
		}
		return errors.New("marketplace unreachable")
	})

	testutil.AssertEqual(t, draws, 2)
	testutil.AssertContains(t, errBuf.String(), "Error: marketplace unreachable")
	testutil.AssertFalse(t, strings.Contains(buf.String(), "\033["))
}
