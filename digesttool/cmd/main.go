// Command digest_tool computes a cryptographic digest of a file and
// prints its size, hex digest and elapsed time. With --setup or
// --clean_up it registers or removes the per-user shell context-menu
// entries that launch it on a clicked file, one per algorithm.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/byte4ever/digest_tool/digest"
	"github.com/byte4ever/digest_tool/digesttool"
	"github.com/byte4ever/digest_tool/progress"
	"github.com/byte4ever/digest_tool/settings"
	"github.com/byte4ever/digest_tool/shellmenu"
)

func main() {
	ses := &session{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}

	os.Exit(ses.exit(run(ses)))
}

func run(ses *session) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCommand(ses).ExecuteContext(ctx)
}

// session carries the process streams and the end-of-run pause.
type session struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// wait is set once the --wait flag or the settings ask for a pause.
	wait bool
}

// exit logs err, then pauses when asked, and returns the process
// status.
func (ses *session) exit(err error) int {
	code := 0

	if err != nil {
		slog.Error("fatal", "error", err)

		code = 1
	}

	if ses.wait {
		fmt.Fprint(ses.errOut, "Press Enter to exit...")

		_, _ = bufio.NewReader(ses.in).ReadString('\n')
	}

	return code
}

// flags holds the raw command-line values.
type flags struct {
	inputFile  string
	digest     string
	setup      bool
	cleanUp    bool
	configPath string
	output     string
	save       bool
	verify     bool
	dryRun     bool
	backend    string
	logLevel   string
	wait       bool
}

func newRootCommand(ses *session) *cobra.Command {
	var fl flags

	cmd := &cobra.Command{
		Use:           "digest_tool",
		Short:         "Compute file digests and manage the shell context menu",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, fl, ses)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&fl.inputFile, "input_file", "i", "", "File to digest")
	fs.StringVarP(
		&fl.digest, "digest", "d", digest.Default.String(),
		"Digest algorithm: "+strings.Join(digest.Tokens(), ", "),
	)
	fs.BoolVar(&fl.setup, "setup", false, "Register the context-menu entries")
	fs.BoolVar(&fl.cleanUp, "clean_up", false, "Remove the context-menu entries")
	fs.StringVar(&fl.configPath, "config", "", "Settings file (default: user config dir)")
	fs.StringVar(&fl.output, "output", settings.OutputText, "Report format: text or json")
	fs.BoolVar(&fl.save, "save", false, "Write the digest to a sidecar file")
	fs.BoolVar(&fl.verify, "verify", false, "Compare the digest with its sidecar file")
	fs.BoolVar(&fl.dryRun, "dry-run", false, "List menu steps without applying them")
	fs.StringVar(&fl.backend, "backend", settings.BackendRegistry, "Menu backend: registry or powershell")
	fs.StringVar(&fl.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&fl.wait, "wait", false, "Wait for Enter before exiting")

	return cmd
}

func loadSettings(cmd *cobra.Command, fl flags) (settings.Settings, error) {
	st := settings.Default()

	path, optional := fl.configPath, false
	if path == "" {
		def, err := settings.DefaultPath()
		if err != nil {
			slog.Debug("no user config dir", "error", err)
		}

		path, optional = def, true
	}

	if path != "" {
		loaded, err := settings.Load(path, optional)
		if err != nil {
			return settings.Settings{}, err
		}

		st = loaded
	}

	fs := cmd.Flags()

	if fs.Changed("output") {
		st.Output = fl.output
	}

	if fs.Changed("backend") {
		st.Menu.Backend = fl.backend
	}

	if fs.Changed("log-level") {
		st.LogLevel = fl.logLevel
	}

	if fs.Changed("wait") {
		st.Wait = fl.wait
	}

	if err := st.Validate(); err != nil {
		return settings.Settings{}, err
	}

	return st, nil
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		w, &slog.HandlerOptions{Level: lvl},
	)))

	return nil
}

func namespace(st settings.Settings) (shellmenu.Namespace, error) {
	if st.Menu.Backend == settings.BackendPowerShell {
		return shellmenu.NewPowerShell(), nil
	}

	return shellmenu.NewRegistry()
}

func execute(cmd *cobra.Command, fl flags, ses *session) error {
	const errCtx = "running digest_tool"

	ses.wait = fl.wait

	st, err := loadSettings(cmd, fl)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ses.wait = st.Wait

	if err := setupLogging(ses.errOut, st.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	opts := digesttool.Options{
		InputFile: fl.inputFile,
		Digest:    fl.digest,
		DigestSet: cmd.Flags().Changed("digest"),
		Setup:     fl.setup,
		CleanUp:   fl.cleanUp,
	}

	if !opts.DigestSet && st.Algorithm != "" {
		opts.Digest, opts.DigestSet = st.Algorithm, true
	}

	cfg, err := digesttool.Resolve(opts)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	rn := &digesttool.Runner{
		Engine: digest.Engine{ChunkSize: st.ChunkSize},
		Save:   fl.save,
		Verify: fl.verify,
		DryRun: fl.dryRun,
	}

	if st.Progress {
		rn.Progress = func(size int64, description string) progress.Sink {
			return progress.New(ses.errOut, size, description)
		}
	}

	if cfg.Mode != digesttool.ModeDigest {
		rn.Manager = &shellmenu.Manager{
			Verb:     st.Menu.Verb,
			Template: st.Menu.CommandTemplate,
		}

		if !fl.dryRun {
			ns, err := namespace(st)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			rn.Manager.Namespace = ns
		}
	}

	rep, err := rn.Run(cmd.Context(), cfg)
	if err != nil && !errors.Is(err, digesttool.ErrDigestMismatch) {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	write := rep.WriteText
	if st.Output == settings.OutputJSON {
		write = rep.WriteJSON
	}

	if wErr := write(ses.out); wErr != nil {
		return fmt.Errorf("%s: %w", errCtx, wErr)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
