package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jask/finvault/internal/session"
	"github.com/jask/finvault/internal/tui"
)

// readPassword takes the password from, in order: the configured env var,
// the first line of stdin with --password-stdin, or an interactive prompt
// when stdin is a terminal.
func readPassword(cmd *cobra.Command, opts *RootOptions, a *app, confirm bool) (string, error) {
	if env := a.cfg.Security.PasswordEnv; env != "" {
		if v, ok := os.LookupEnv(env); ok {
			return v, nil
		}
	}
	if opts.PasswordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		title := "Password"
		if confirm {
			title = "New password"
		}
		return tui.PromptPassword(f, cmd.ErrOrStderr(), title, confirm, a.cfg.Security.MinPasswordLength)
	}
	return "", fmt.Errorf("no password: set $%s, pass --password-stdin or run in a terminal", a.cfg.Security.PasswordEnv)
}

// login opens a session for commands that need the encryption key.
func login(ctx context.Context, cmd *cobra.Command, opts *RootOptions, a *app) (*session.Session, error) {
	has, err := a.sessions.HasAccount(ctx)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, session.ErrNoAccount
	}
	pw, err := readPassword(cmd, opts, a, false)
	if err != nil {
		return nil, err
	}
	return a.sessions.Login(ctx, pw)
}
