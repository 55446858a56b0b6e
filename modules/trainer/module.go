// Package trainer launches the external trajectory-GAN training process.
// It assembles the trainer's command line from a validated configuration,
// runs the process in the script's directory, streams its output into the
// launcher's logs, and records the run in the run log.
package trainer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"time"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/datasetschema"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/szhaofelicia/Basketball-GAN/internal/runlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/trainspec"
)

// stderrTailLimit caps how much of the trainer's stderr is carried in a
// failure error.
const stderrTailLimit = 2048

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the trainer launcher. The embedded
// trainspec.Config carries the full hyperparameter set; the remaining
// fields control how the process itself is spawned.
type Input struct {
	trainspec.Config

	Python    string `tctl:"python"`
	Script    string `tctl:"script"`
	SchemaDir string `tctl:"schema_dir"`
	DryRun    bool   `tctl:"dry_run"`
}

// Deps declares the resources the trainer may use.
type Deps struct {
	RunLog *runlog.Store `tctl:"run_log"`
}

// Output is the result of one trainer launch.
type Output struct {
	ExitCode        int      `cty:"exit_code"`
	DurationSeconds float64  `cty:"duration_seconds"`
	CheckpointName  string   `cty:"checkpoint_name"`
	WorkDir         string   `cty:"work_dir"`
	Command         []string `cty:"command"`
	DryRun          bool     `cty:"dry_run"`
}

// OnRunTrainer is the handler for the 'trainer' launcher's on_run event.
func OnRunTrainer(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("checkpoint", input.CheckpointName)

	if err := input.Config.Validate(); err != nil {
		return nil, err
	}

	// The schema flag names a descriptor the trainer will load; resolving
	// it here turns a typo into a launch error instead of a dead run.
	if input.SchemaDir != "" {
		schema, err := datasetschema.Resolve(input.SchemaDir, input.Schema)
		if err != nil {
			return nil, fmt.Errorf("schema check failed: %w", err)
		}
		logger.Debug("Dataset schema resolved.",
			"schema", schema.Name, "positions", len(schema.Positions), "with_ball", schema.WithBall)
	}

	workDir, err := trainspec.ResolveWorkDir(input.Script)
	if err != nil {
		return nil, err
	}

	command := append([]string{input.Python, input.Script}, input.Config.Args()...)

	if input.DryRun {
		logger.Info("Dry run: trainer command assembled, not spawning.",
			"work_dir", workDir, "command", strings.Join(command, " "))
		return &Output{
			ExitCode:       0,
			CheckpointName: input.CheckpointName,
			WorkDir:        workDir,
			Command:        command,
			DryRun:         true,
		}, nil
	}

	if _, err := os.Stat(input.Script); err != nil {
		return nil, fmt.Errorf("training script not found: %w", err)
	}
	if _, err := os.Stat(input.DatasetDir); err != nil {
		return nil, fmt.Errorf("dataset directory not found: %w", err)
	}

	startedAt := time.Now()
	var runID int64
	if deps.RunLog != nil {
		runID, err = deps.RunLog.RecordStart(runlog.Run{
			CheckpointName: input.CheckpointName,
			DatasetName:    input.DatasetName,
			Command:        command,
			WorkDir:        workDir,
			StartedAt:      startedAt,
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Info("🚀 Spawning trainer process.", "python", input.Python, "script", input.Script, "work_dir", workDir)
	exitCode, stderrTail, runErr := spawn(ctx, workDir, command)
	duration := time.Since(startedAt)

	if deps.RunLog != nil {
		if err := deps.RunLog.RecordFinish(runID, exitCode, time.Now()); err != nil {
			logger.Error("Failed to record run finish.", "error", err)
		}
	}

	if runErr != nil {
		return nil, fmt.Errorf("trainer exited with code %d after %s: %w\nstderr tail:\n%s",
			exitCode, duration.Round(time.Second), runErr, stderrTail)
	}

	logger.Info("🏁 Trainer finished.", "exit_code", exitCode, "duration", duration.Round(time.Second))
	return &Output{
		ExitCode:        exitCode,
		DurationSeconds: duration.Seconds(),
		CheckpointName:  input.CheckpointName,
		WorkDir:         workDir,
		Command:         command,
	}, nil
}

// spawn runs the trainer command in workDir, streaming stdout and stderr
// line by line into the logger. It returns the process exit code and the
// tail of stderr for error reporting.
func spawn(ctx context.Context, workDir string, command []string) (int, string, error) {
	logger := ctxlog.FromContext(ctx)

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, "", fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, "", fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, "", fmt.Errorf("failed to start trainer: %w", err)
	}

	var tail strings.Builder
	done := make(chan struct{})
	go func() {
		streamLines(stdout, func(line string) {
			logger.Info("trainer", "stream", "stdout", "line", line)
		})
		close(done)
	}()
	streamLines(stderr, func(line string) {
		logger.Warn("trainer", "stream", "stderr", "line", line)
		if tail.Len() < stderrTailLimit {
			tail.WriteString(line)
			tail.WriteByte('\n')
		}
	})
	<-done

	err = cmd.Wait()
	exitCode := cmd.ProcessState.ExitCode()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitCode, tail.String(), fmt.Errorf("process failed: %w", err)
		}
		return exitCode, tail.String(), err
	}
	return exitCode, tail.String(), nil
}

// streamLines feeds each line of r to fn until EOF.
func streamLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text())
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLauncher("OnRunTrainer", &registry.RegisteredLauncher{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunTrainer,
	})
}
