// Command coursechat is a terminal client for the course tutor server.
//
// Usage:
//
//	coursechat --course networks [flags]
//
// Settings come from flags, COURSECHAT_* environment variables, and
// <config-dir>/config.toml, in that order. Run with --help for the flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fwojciec/coursechat"
	bt "github.com/fwojciec/coursechat/bubbletea"
	"github.com/fwojciec/coursechat/flask"
	coursejson "github.com/fwojciec/coursechat/json"
	"github.com/fwojciec/coursechat/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// drainTimeout bounds how long exit waits for an answer stream to stop.
const drainTimeout = 2 * time.Second

const longDesc = `Chat with the course tutor from the terminal.

Answers stream in as they are generated. Questions asked while an answer is
streaming wait for it to finish; only the newest waiting question is kept.
The conversation, question counter, and revision questions are cached per
course and restored on the next run.

Examples:
  coursechat --course networks --user alice --password secret
  COURSECHAT_SERVER=https://tutor.example.com coursechat -c networks`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "coursechat: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configDir string
		v         *viper.Viper
	)

	cmd := &cobra.Command{
		Use:           "coursechat",
		Short:         "Terminal client for the course tutor",
		Long:          longDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			v, err = initViper(configDir)
			if err != nil {
				return err
			}
			bindFlags(v, cmd, flags, flagKeys)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(v, configDir)
			if err != nil {
				return err
			}
			return run(cmd.Context(), s, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", defaultDir(), "Directory holding config.toml, logs, and transcripts")
	addFlags(cmd, flags, flagKeys, defaultDir())
	return cmd
}

func run(ctx context.Context, s settings, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logFile, err := openLogFile(s.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	fileLog := newLogger(s, logFile)
	// Outside the TUI, messages also go to the terminal.
	consoleLog := logger.Multi(fileLog, logger.New(
		logger.WithPretty(true),
		logger.WithWriter(stderr),
		logger.WithDebug(s.Debug),
	))

	client := flask.New(flask.WithBaseURL(s.Server), flask.WithLogger(fileLog))
	if s.User != "" {
		if err := client.Login(ctx, s.User, s.Password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	snap, err := loadSnapshot(s.Transcript, s.Course, consoleLog)
	if err != nil {
		return err
	}

	streamCtx, cancelStreams := context.WithCancel(ctx)
	defer cancelStreams()

	bridge := bt.NewBridge()
	defer bridge.Close()
	scheduler := coursechat.NewScheduler(
		coursechat.NewDecoder(coursechat.WithDecoderLogger(fileLog)),
		bridge.Sink,
		coursechat.WithSchedulerLogger(fileLog),
		coursechat.WithStartHandler(bridge.Started),
		coursechat.WithDoneHandler(bridge.Finished),
	)
	chat := coursechat.NewChat(client, scheduler, s.Course)

	model := bt.New(chat, bridge, snap,
		bt.WithTheme(coursechat.DefaultTheme()),
		bt.WithRevisionSchedule(s.Revision),
		bt.WithLogger(fileLog),
		bt.WithContext(streamCtx),
	)
	final, runErr := bt.Run(ctx, model)

	// Stop any answer still streaming before the snapshot is taken.
	cancelStreams()
	bridge.Close()
	waitCtx, cancelWait := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelWait()
	if err := scheduler.Wait(waitCtx); err != nil {
		fileLog.Warn("answer stream did not stop", "error", err)
	}

	if err := coursejson.Save(s.Transcript, final.Snapshot()); err != nil {
		return errors.Join(runErr, fmt.Errorf("save transcript: %w", err))
	}
	consoleLog.Info("transcript saved", "path", s.Transcript)

	if runErr != nil {
		return fmt.Errorf("TUI: %w", runErr)
	}
	return nil
}

func newLogger(s settings, w io.Writer) *slog.Logger {
	return logger.New(
		logger.WithWriter(w),
		logger.WithDebug(s.Debug),
		logger.WithPretty(s.LogFormat == logFormatPretty),
		logger.WithJSON(s.LogFormat == logFormatJSON),
		logger.WithSource(s.Debug),
	)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// loadSnapshot restores the cached conversation for course. A missing
// cache starts a fresh one; a cache for another course is ignored.
func loadSnapshot(path, course string, log *slog.Logger) (coursechat.Snapshot, error) {
	snap, err := coursejson.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return coursechat.NewSnapshot(course, time.Now()), nil
	case err != nil:
		return coursechat.Snapshot{}, fmt.Errorf("load transcript: %w", err)
	case snap.CourseID != course:
		log.Warn("transcript belongs to another course, starting fresh",
			"path", path, "transcript_course", snap.CourseID, "course", course)
		return coursechat.NewSnapshot(course, time.Now()), nil
	}
	return snap, nil
}
