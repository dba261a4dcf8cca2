// Package console implements the line-oriented command interpreter.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/deadline/internal/scheduler"
)

// ErrUsage is returned for malformed or unknown commands.
var ErrUsage = errors.New("usage error")

// errQuit signals EXIT.
var errQuit = errors.New("quit")

const helpText = `Commands:
  ADD_TASK <id> <duration> <deadline> <value>  admit a task
  TICK                                         advance one time step
  RUN_ALL                                      run until drained
  REPORT                                       print the execution report
  UNDO                                         revert the last selection
  HELP                                         show this help
  EXIT                                         leave
`

// Interpreter executes console commands against one executor.
type Interpreter struct {
	exec   *scheduler.Executor
	out    io.Writer
	logger zerolog.Logger
}

// New creates an interpreter writing its output to out.
func New(exec *scheduler.Executor, out io.Writer, logger zerolog.Logger) *Interpreter {
	return &Interpreter{exec: exec, out: out, logger: logger}
}

// Run reads commands from in until EOF, EXIT, or ctx cancellation.
// Command errors are printed and do not stop the loop.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	fmt.Fprint(in.out, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := in.Execute(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(in.out, "error: %v\n", err)
		}
		fmt.Fprint(in.out, "> ")
	}
	return scanner.Err()
}

// Execute runs a single command line. Blank lines are ignored.
// Malformed input returns an error wrapping ErrUsage and leaves the executor untouched.
func (in *Interpreter) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	if cmd != "ADD_TASK" && len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", ErrUsage, cmd)
	}

	switch cmd {
	case "ADD_TASK":
		return in.addTask(args)
	case "TICK":
		snap := in.exec.Tick()
		in.logger.Debug().Int("time", snap.Now).Str("state", snap.State.String()).Msg("tick")
		RenderSnapshot(in.out, snap)
	case "RUN_ALL":
		snap := in.exec.RunToCompletion()
		in.logger.Debug().Int("time", snap.Now).Int("total_value", snap.TotalValue).Msg("run to completion")
		RenderSnapshot(in.out, snap)
	case "REPORT":
		RenderReport(in.out, in.exec.Report())
	case "UNDO":
		return in.undo()
	case "HELP":
		fmt.Fprint(in.out, helpText)
	case "EXIT", "QUIT":
		return errQuit
	default:
		return fmt.Errorf("%w: unknown command %q (try HELP)", ErrUsage, fields[0])
	}
	return nil
}

func (in *Interpreter) addTask(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: ADD_TASK <id> <duration> <deadline> <value>", ErrUsage)
	}

	nums := make([]int, 3)
	for i, name := range []string{"duration", "deadline", "value"} {
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			return fmt.Errorf("%w: %s %q is not an integer", ErrUsage, name, args[i+1])
		}
		nums[i] = n
	}

	if err := in.exec.AddTask(args[0], nums[0], nums[1], nums[2]); err != nil {
		return err
	}
	fmt.Fprintf(in.out, "added %s duration=%d deadline=%d value=%d\n", args[0], nums[0], nums[1], nums[2])
	return nil
}

func (in *Interpreter) undo() error {
	res, err := in.exec.Undo()
	if errors.Is(err, scheduler.ErrNothingToUndo) {
		fmt.Fprintln(in.out, "nothing to undo")
		return nil
	}
	if err != nil {
		return err
	}

	switch res {
	case scheduler.UndoReverted:
		fmt.Fprintln(in.out, "undo: selection reverted")
	case scheduler.UndoStale:
		fmt.Fprintln(in.out, "undo: selection already superseded, nothing reverted")
	}
	RenderSnapshot(in.out, in.exec.Snapshot())
	return nil
}
