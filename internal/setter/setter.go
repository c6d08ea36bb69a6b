// Package setter applies wallpapers to screens by running an external
// wallpaper daemon client such as swww.
package setter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
)

// ErrEmptyCommand is returned when the configured command splits to
// nothing.
var ErrEmptyCommand = errors.New("setter command is empty")

// Setter shows a wallpaper on one screen.
type Setter interface {
	Set(ctx context.Context, screen, path string) error
}

// RunFunc runs name with args and returns its combined output.
type RunFunc func(ctx context.Context, name string, args []string) ([]byte, error)

// Options configures a CommandSetter.
type Options struct {
	// Command is the shell-quoted command prefix, e.g. "swww img".
	Command            string
	TransitionType     string
	TransitionDuration float64
	TransitionFPS      int
	// ResizeMode is crop, fit, no or stretch.
	ResizeMode string
	// FillColor is RRGGBB or RRGGBBAA; alpha defaults to ff.
	FillColor string
	// Timeout bounds each invocation. Zero means 10s.
	Timeout time.Duration
	Logger  *slog.Logger
	// Run replaces process execution, for tests.
	Run RunFunc
}

// DefaultOptions returns swww defaults: fade transition, 1s at 60fps,
// cropped, black fill.
func DefaultOptions() Options {
	return Options{
		Command:            "swww img",
		TransitionType:     "fade",
		TransitionDuration: 1.0,
		TransitionFPS:      60,
		ResizeMode:         "crop",
		FillColor:          "000000ff",
		Timeout:            10 * time.Second,
	}
}

// CommandSetter invokes the configured command once per screen.
type CommandSetter struct {
	argv []string
	opts Options
}

var _ Setter = (*CommandSetter)(nil)

// NewCommandSetter splits opts.Command with POSIX shell rules.
func NewCommandSetter(opts Options) (*CommandSetter, error) {
	argv, err := shlex.Split(opts.Command)
	if err != nil {
		return nil, fmt.Errorf("splitting setter command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Run == nil {
		opts.Run = runCommand
	}
	return &CommandSetter{argv: argv, opts: opts}, nil
}

// Args returns the full argv used to show path on screen.
func (s *CommandSetter) Args(screen, path string) []string {
	args := make([]string, 0, len(s.argv)+13)
	args = append(args, s.argv...)
	args = append(args, "-o", screen, path)
	if s.opts.ResizeMode != "" {
		args = append(args, "--resize", s.opts.ResizeMode)
	}
	if fill := normalizeFill(s.opts.FillColor); fill != "" {
		args = append(args, "--fill-color", fill)
	}
	if s.opts.TransitionType != "" {
		args = append(args,
			"--transition-type", s.opts.TransitionType,
			"--transition-duration", strconv.FormatFloat(s.opts.TransitionDuration, 'g', -1, 64),
		)
		if s.opts.TransitionFPS > 0 {
			args = append(args, "--transition-fps", strconv.Itoa(s.opts.TransitionFPS))
		}
	}
	return args
}

// Set implements Setter.
func (s *CommandSetter) Set(ctx context.Context, screen, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	argv := s.Args(screen, path)
	start := time.Now()
	out, err := s.opts.Run(ctx, argv[0], argv[1:])
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s failed on %s: %w: %s", argv[0], screen, err, msg)
		}
		return fmt.Errorf("%s failed on %s: %w", argv[0], screen, err)
	}
	s.opts.Logger.Debug("wallpaper set",
		"screen", screen,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Apply sets every screen of assignment, in screen-name order. It keeps
// going after a failure and returns all failures joined.
func Apply(ctx context.Context, s Setter, assignment map[string]string) error {
	screens := make([]string, 0, len(assignment))
	for screen := range assignment {
		screens = append(screens, screen)
	}
	sort.Strings(screens)

	var errs []error
	for _, screen := range screens {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Set(ctx, screen, assignment[screen]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// normalizeFill strips a leading # and appends full alpha to RRGGBB.
func normalizeFill(c string) string {
	c = strings.TrimPrefix(strings.TrimPrefix(c, "#"), "0x")
	if len(c) == 6 {
		return strings.ToLower(c) + "ff"
	}
	return strings.ToLower(c)
}

func runCommand(ctx context.Context, name string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
