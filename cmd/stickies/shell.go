package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/lifecycle"
	"github.com/fatih/color"

	"github.com/aretw0/stickies"
	"github.com/aretw0/stickies/pkg/adapters/headless"
	"github.com/aretw0/stickies/pkg/core"
)

const shellHelp = `Commands:
  new                 create a note and open its window
  open <id>           open or focus a note window
  edit <id> <text>    type text into a note (\n for a new line)
  show <id>           print what a note window shows
  close <id|main>     close a note window (saves first) or hide the dashboard
  pin <id>            toggle always-on-top
  min <id>            minimize a note window
  focus <id>          focus a note window
  delete <id>         delete a note (asks for confirmation)
  list                print the dashboard
  windows             print every window
  front               bring every note to the front
  dashboard           show the dashboard
  state               print runtime state as JSON
  datadir             print where notes are stored
  quit                save everything and exit`

var (
	idColor     = color.New(color.FgCyan)
	mutedColor  = color.New(color.FgHiBlack)
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
	promptColor = color.New(color.FgYellow, color.Bold)
)

var errUsage = errors.New("usage")

type shell struct {
	app     *stickies.App
	windows *headless.Manager
	lines   <-chan string
	out     io.Writer
}

// newShell starts reading lines from in until ctx is done or in is exhausted.
func newShell(ctx context.Context, windows *headless.Manager, in io.Reader, out io.Writer) *shell {
	lines := make(chan string)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return nil
			}
		}
		return scanner.Err()
	})
	return &shell{windows: windows, lines: lines, out: out}
}

func (s *shell) next(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-s.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func (s *shell) run(ctx context.Context) error {
	for {
		promptColor.Fprint(s.out, "> ")
		line, ok := s.next(ctx)
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}

		quit, err := s.exec(ctx, line)
		if err != nil {
			errColor.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// traceRefreshes prints every event of src until ctx is done.
func (s *shell) traceRefreshes(ctx context.Context, src lifecycle.Source) error {
	if err := src.Start(ctx); err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for ev := range src.Events() {
			mutedColor.Fprintf(s.out, "[%s]\n", ev)
		}
		return nil
	})
	return nil
}

// confirm asks on the shell before a note is deleted.
func (s *shell) confirm(ctx context.Context, id core.NoteID) bool {
	fmt.Fprintf(s.out, "Delete note %s? [y/N] ", id)
	answer, ok := s.next(ctx)
	if !ok {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (s *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "quit", "exit":
		return true, nil
	case "new":
		id, err := s.app.CreateNote(ctx)
		if err != nil {
			return false, err
		}
		okColor.Fprintf(s.out, "created %s\n", id)
	case "open":
		id, err := noteArg(args)
		if err != nil {
			return false, err
		}
		return false, s.app.OpenNote(ctx, id)
	case "edit":
		if len(args) < 1 {
			return false, fmt.Errorf("%w: edit <id> <text>", errUsage)
		}
		id, err := noteArg(args[:1])
		if err != nil {
			return false, err
		}
		_, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		_, text, _ := strings.Cut(strings.TrimSpace(rest), " ")
		return false, s.app.Edit(id, strings.ReplaceAll(strings.TrimSpace(text), `\n`, "\n"))
	case "show":
		id, err := noteArg(args)
		if err != nil {
			return false, err
		}
		content, err := s.app.Content(id)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, content)
	case "close":
		label, err := labelArg(args)
		if err != nil {
			return false, err
		}
		return false, s.app.CloseWindow(ctx, label)
	case "pin":
		label, err := labelArg(args)
		if err != nil {
			return false, err
		}
		pinned, err := s.app.TogglePin(ctx, label)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%s pinned=%t\n", label, pinned)
	case "min":
		label, err := labelArg(args)
		if err != nil {
			return false, err
		}
		return false, s.app.Minimize(ctx, label)
	case "focus":
		id, err := noteArg(args)
		if err != nil {
			return false, err
		}
		return false, s.app.FocusNote(ctx, id)
	case "delete":
		id, err := noteArg(args)
		if err != nil {
			return false, err
		}
		return false, s.app.DeleteNote(ctx, id)
	case "list":
		s.printDashboard()
	case "windows":
		s.printWindows()
	case "front":
		return false, s.app.BringAllToFront(ctx)
	case "dashboard":
		return false, s.app.ShowDashboard(ctx)
	case "datadir":
		if dir := s.app.DataDir(); dir != "" {
			fmt.Fprintln(s.out, dir)
			mutedColor.Fprintf(s.out, "notes in %s\n", filepath.Join(dir, "notes"))
		} else {
			mutedColor.Fprintln(s.out, "(in memory)")
		}
	case "state":
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return false, enc.Encode(s.app.State())
	default:
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, nil
}

func (s *shell) printDashboard() {
	notes := s.app.Dashboard().Summaries()
	if len(notes) == 0 {
		mutedColor.Fprintln(s.out, "(no notes)")
		return
	}
	for _, n := range notes {
		idColor.Fprint(s.out, n.ID)
		mutedColor.Fprintf(s.out, "  %s\n", n.UpdatedAt.Format("15:04:05"))
		fmt.Fprintf(s.out, "  %s\n", oneLine(n.Preview))
	}
}

func (s *shell) printWindows() {
	windows := s.windows.Windows()
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].Created.Before(windows[j].Created) })
	focused := s.windows.Focused()
	for _, w := range windows {
		var flags []string
		if w.Visible {
			flags = append(flags, "visible")
		} else {
			flags = append(flags, "hidden")
		}
		if w.Pinned {
			flags = append(flags, "pinned")
		}
		if w.Minimized {
			flags = append(flags, "minimized")
		}
		if w.Label == focused {
			flags = append(flags, "focused")
		}
		idColor.Fprint(s.out, w.Label)
		fmt.Fprintf(s.out, "  %s\n", strings.Join(flags, ","))
	}
}

func noteArg(args []string) (core.NoteID, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: expected one note id", errUsage)
	}
	role := core.ResolveLabel(labelFor(args[0]))
	if role.IsDashboard() || role.NoteID == "" {
		return "", fmt.Errorf("%w: %q is not a note", errUsage, args[0])
	}
	return role.NoteID, nil
}

func labelArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: expected one note id", errUsage)
	}
	return labelFor(args[0]), nil
}

// labelFor accepts a note id, a full window label, or "main"/"dashboard".
func labelFor(arg string) string {
	switch {
	case arg == core.DashboardLabel || arg == "dashboard":
		return core.DashboardLabel
	case strings.HasPrefix(arg, core.NoteLabelPrefix):
		return arg
	default:
		return core.NoteLabel(core.NoteID(arg))
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "(empty)"
	}
	return s
}
