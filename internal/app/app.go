// Package app dispatches parsed CLI commands to the lecture pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/tmercer/lectern/internal/audio"
	"github.com/tmercer/lectern/internal/chat"
	"github.com/tmercer/lectern/internal/cli"
	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/doctor"
	"github.com/tmercer/lectern/internal/export"
	"github.com/tmercer/lectern/internal/ingest"
	"github.com/tmercer/lectern/internal/ipc"
	"github.com/tmercer/lectern/internal/lecture"
	"github.com/tmercer/lectern/internal/logging"
	"github.com/tmercer/lectern/internal/notify"
	"github.com/tmercer/lectern/internal/pipeline"
	"github.com/tmercer/lectern/internal/remote"
	"github.com/tmercer/lectern/internal/store"
	"github.com/tmercer/lectern/internal/version"
	"github.com/tmercer/lectern/internal/workflow"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("lectern"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("lectern"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, "stop")
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, "cancel")
	case cli.CommandCapture:
		return r.commandCapture(ctx, cfgLoaded.Config, logger)
	case cli.CommandProcess:
		return r.commandProcess(ctx, cfgLoaded.Config, logger, parsed.Positional)
	case cli.CommandChat:
		return r.commandChat(ctx, cfgLoaded.Config, logger, parsed.Positional)
	case cli.CommandQuiz:
		return r.commandQuiz(cfgLoaded.Config)
	case cli.CommandExport:
		return r.commandExport(cfgLoaded.Config, logger)
	case cli.CommandList:
		return r.commandList(cfgLoaded.Config)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandCapture owns the live-capture session: it binds the control socket,
// records until stop/cancel arrives over IPC, then processes the recording.
func (r Runner) commandCapture(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: a capture session is already running; use `lectern stop` or `lectern cancel`")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	lib, closeLib, code := r.openLibrary(cfg)
	if code != 0 {
		return code
	}
	defer closeLib()

	committer := newLibraryCommitter(lib, cfg.Chat.Greeting, logger)
	controller := workflow.NewController(
		logger,
		pipeline.NewRecorder(cfg.Audio, logger),
		remote.New(cfg.Service, logger),
		committer,
		notify.NewConsole(r.Stdout, logger),
	)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	result := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	return r.reportResult(result, committer)
}

// commandProcess submits an existing audio file through the same pipeline.
func (r Runner) commandProcess(ctx context.Context, cfg config.Config, logger *slog.Logger, path string) int {
	if code := r.rejectWhenSessionActive(ctx); code != 0 {
		return code
	}

	lib, closeLib, code := r.openLibrary(cfg)
	if code != 0 {
		return code
	}
	defer closeLib()

	committer := newLibraryCommitter(lib, cfg.Chat.Greeting, logger)
	controller := workflow.NewController(
		logger,
		nil,
		remote.New(cfg.Service, logger),
		committer,
		notify.NewConsole(r.Stdout, logger),
	)

	artifact, err := ingest.NewSelector(controller).FromFile(path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	return r.reportResult(controller.Submit(ctx, artifact), committer)
}

// reportResult prints one lifecycle outcome and maps it to an exit code.
func (r Runner) reportResult(result workflow.Result, committer *libraryCommitter) int {
	if result.Cancelled {
		fmt.Fprintln(r.Stdout, "cancelled")
		return 0
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	if record, ok := committer.lastSaved(); ok {
		fmt.Fprintf(r.Stdout, "Saved lecture %q (%s)\n", record.Title, record.ID)
	}
	return 0
}

func (r Runner) commandChat(ctx context.Context, cfg config.Config, logger *slog.Logger, question string) int {
	lib, closeLib, code := r.openLibrary(cfg)
	if code != 0 {
		return code
	}
	defer closeLib()

	record, err := lib.LatestLecture()
	if err != nil {
		if errors.Is(err, store.ErrNoLecture) {
			fmt.Fprintln(r.Stderr, "error: no processed lecture yet; run `lectern capture` or `lectern process FILE` first")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	session, err := chat.NewSession(record.ID, record.Result.Transcript, remote.New(cfg.Service, logger), lib, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := session.Seed(cfg.Chat.Greeting); err != nil {
		logger.Warn("seed chat greeting failed", "error", err.Error())
	}

	reply, err := session.Ask(ctx, question)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, reply.Content)
	return 0
}

func (r Runner) commandQuiz(cfg config.Config) int {
	lib, closeLib, code := r.openLibrary(cfg)
	if code != 0 {
		return code
	}
	defer closeLib()

	snapshot, ok, err := lib.ReadQuizSnapshot()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if !ok {
		snapshot = lecture.DemoQuiz()
	}

	r.printQuiz(snapshot)
	return 0
}

// printQuiz renders the quiz with an answer key footer. Demo content is
// labeled so it is never mistaken for processed results.
func (r Runner) printQuiz(snapshot lecture.QuizSnapshot) {
	if snapshot.Demo {
		fmt.Fprintln(r.Stdout, "Quiz (demo — no processed lecture yet)")
	} else {
		fmt.Fprintln(r.Stdout, "Quiz")
	}

	answers := make([]string, 0, len(snapshot.Questions))
	for i, question := range snapshot.Questions {
		fmt.Fprintf(r.Stdout, "\n%d. %s\n", i+1, question.Question)
		for j, option := range question.Options {
			fmt.Fprintf(r.Stdout, "   %c) %s\n", 'a'+j, option)
		}
		if question.Answer >= 0 && question.Answer < len(question.Options) {
			answers = append(answers, fmt.Sprintf("%d-%c", i+1, 'a'+question.Answer))
		}
	}
	if len(answers) > 0 {
		fmt.Fprintf(r.Stdout, "\nAnswers: %s\n", strings.Join(answers, " "))
	}
}

func (r Runner) commandExport(cfg config.Config, logger *slog.Logger) int {
	lib, closeLib, code := r.openLibrary(cfg)
	if code != 0 {
		return code
	}
	defer closeLib()

	record, err := lib.LatestLecture()
	if err != nil {
		if errors.Is(err, store.ErrNoLecture) {
			fmt.Fprintln(r.Stderr, "error: no processed lecture to export")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	output, err := export.New(cfg.Export, logger).Export(record.Title, record.Result)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "Wrote %s and %s (%d page(s))\n", output.MarkdownPath, output.HTMLPath, output.Pages)
	return 0
}

func (r Runner) commandList(cfg config.Config) int {
	lib, closeLib, code := r.openLibrary(cfg)
	if code != 0 {
		return code
	}
	defer closeLib()

	records, err := lib.ListLectures()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintln(r.Stdout, "library is empty")
		return 0
	}
	for _, record := range records {
		fmt.Fprintf(r.Stdout, "%s  %s  %s\n", record.ID, record.CreatedAt.Format("2006-01-02 15:04"), record.Title)
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		if resp.Elapsed != "" {
			fmt.Fprintf(r.Stdout, "%s %s\n", resp.State, resp.Elapsed)
			return 0
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: no active capture session")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// rejectWhenSessionActive maps a live capture session to the busy error for
// upload-style ingestion.
func (r Runner) rejectWhenSessionActive(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if !handled || err != nil {
		return 0
	}
	switch resp.State {
	case "capturing", "processing":
		fmt.Fprintf(r.Stderr, "error: %v\n", ingest.ErrPipelineBusy)
		return 1
	}
	return 0
}

// openLibrary opens the lecture library, reporting failures on stderr.
func (r Runner) openLibrary(cfg config.Config) (*store.Store, func(), int) {
	dir, err := store.DefaultDir(cfg.Library)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return nil, nil, 1
	}
	lib, err := store.Open(dir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return nil, nil, 1
	}
	return lib, func() { _ = lib.Close() }, 0
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
