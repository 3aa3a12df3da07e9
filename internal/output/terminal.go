package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Screen redraws a watched listing. Escape codes are only written when
// the output is a terminal; piped output gets plain frames separated by
// a blank line.
type Screen struct {
	out io.Writer
	tty bool
}

// NewScreen detects whether out is a terminal
func NewScreen(out io.Writer) *Screen {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Screen{out: out, tty: tty}
}

// Writer returns the underlying output
func (s *Screen) Writer() io.Writer { return s.out }

func (s *Screen) escape(code string) {
	if s.tty {
		_, _ = fmt.Fprint(s.out, code)
	}
}

// Frame starts a new frame with the status line
func (s *Screen) Frame(updated time.Time, every time.Duration) {
	if s.tty {
		s.escape(clearScreen)
	} else {
		_, _ = fmt.Fprintln(s.out)
	}
	_, _ = fmt.Fprintf(s.out, "Last update: %s | Next refresh in %s | Press Ctrl+C to exit\n\n",
		updated.Format("15:04:05"), every.Round(time.Second))
}

// Watch draws a frame every interval until ctx is cancelled or the process
// is interrupted. Errors from draw are reported on errOut and do not stop
// the loop.
func (s *Screen) Watch(ctx context.Context, interval time.Duration, errOut io.Writer, draw func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.escape(hideCursor)
	defer s.escape(showCursor)

	for {
		s.Frame(time.Now(), interval)
		if err := draw(ctx); err != nil && ctx.Err() == nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

		if ctx.Err() == nil {
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
			}
		}
		s.escape(clearScreen)
		_, _ = fmt.Fprintln(s.out, "Watch mode ended.")
		return nil
	}
}
