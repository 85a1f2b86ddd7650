package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/hikelog/internal/apperror"
)

// confirm shows details, asks question and reads one line from in.
// Only "y" or "yes" (any case) agree; EOF counts as no.
func confirm(in io.Reader, out io.Writer, details, question string) (bool, error) {
	if details != "" {
		fmt.Fprintln(out, details)
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ask runs confirm against the command's streams unless skip (--yes) is set.
func ask(cmd *cobra.Command, skip bool, details, question string) (bool, error) {
	if skip {
		return true, nil
	}
	return confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), details, question)
}

// exactArgs is cobra.ExactArgs with a usage exit code and a message naming
// the expected arguments.
func exactArgs(usage ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(usage) {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("%s expects %d argument(s): %s", cmd.CommandPath(), len(usage), strings.Join(usage, " ")))
		}
		return nil
	}
}

// parseID parses a positional id argument.
func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", fmt.Sprintf("invalid %s id %q", what, raw))
	}
	return id, nil
}

// groupUsage backs commands that only group subcommands. Without a RunE,
// cobra prints help and exits 0 for a mistyped subcommand.
func groupUsage(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	return cmd.Help()
}
