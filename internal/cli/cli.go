package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/nnpipe/internal/app"
	"github.com/vk/nnpipe/internal/remote"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("nnpipe", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
nnpipe - Build and validate inference pipelines for the accelerator.

Usage:
  nnpipe [options] [PIPELINE_FILE]

Arguments:
  PIPELINE_FILE
    Path to the .hcl file describing the pipeline.

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "", "Path to the pipeline file.")
	pFlag := flagSet.String("p", "", "Path to the pipeline file (shorthand).")
	outFlag := flagSet.String("out", "", "Where to write the compiled bundle. Defaults to the pipeline path with a .nnb extension.")
	logFormatFlag := flagSet.String("log-format", app.DefaultLogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", app.DefaultLogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	remoteURLFlag := flagSet.String("remote-url", "", "socket.io URL of an execution host to publish the bundle to. Empty disables publishing.")
	remoteNamespaceFlag := flagSet.String("remote-namespace", "/", "socket.io namespace on the execution host.")
	remoteTimeoutFlag := flagSet.Duration("remote-timeout", remote.DefaultTimeout, "How long to wait for the execution host to connect and acknowledge.")
	remoteInsecureFlag := flagSet.Bool("remote-insecure", false, "Skip TLS certificate verification of the execution host.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *pipelineFlag != "" {
		path = *pipelineFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Pipeline path determined.", "path", path)

	if path == "" {
		slog.Debug("No pipeline path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		PipelinePath:    path,
		OutputPath:      *outFlag,
		LogFormat:       *logFormatFlag,
		LogLevel:        *logLevelFlag,
		RemoteURL:       *remoteURLFlag,
		RemoteNamespace: *remoteNamespaceFlag,
		RemoteTimeout:   *remoteTimeoutFlag,
		RemoteInsecure:  *remoteInsecureFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
