package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/logging"
	"github.com/kaboocam/kaboocam/internal/validate"
)

// openCLI loads the config and opens a session that logs to the log file,
// keeping the terminal for command output.
func (o *options) openCLI() (*session, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath})
	if err != nil {
		return nil, err
	}
	return openSession(cfg, logger)
}

func requestContext(cmd *cobra.Command, s *session) (context.Context, context.CancelFunc) {
	timeout := s.deps.Cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func newLoginCmd(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later runs",
		Long: `Sign in with email and password. The password is read from the
terminal without echo, or from the first line of stdin when it is piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if email == "" {
				fmt.Fprint(out, "Email: ")
				line, err := readLine(in)
				if err != nil {
					return err
				}
				email = line
			}
			fmt.Fprint(out, "Password: ")
			password, err := readPassword(cmd.InOrStdin(), in)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			form := validate.LoginForm{Email: email, Password: password}
			if err := validate.Struct(&form); err != nil {
				return errors.New(validate.First(err).Message)
			}

			s, err := opts.openCLI()
			if err != nil {
				return err
			}
			defer s.Close()
			ctx, cancel := requestContext(cmd, s)
			defer cancel()

			member, err := s.deps.SignIn(ctx, form.Email, form.Password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			name := member.Name
			if name == "" {
				name = member.Email
			}
			fmt.Fprintf(out, "Logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readPassword(src io.Reader, buffered *bufio.Reader) (string, error) {
	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return readLine(buffered)
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openCLI()
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()
			if !s.deps.Store.HasToken() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			ctx, cancel := requestContext(cmd, s)
			defer cancel()
			// The local session is gone either way.
			if err := s.deps.Client.Logout(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			if err := s.deps.Cache.ClearProfile(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			fmt.Fprintln(out, "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openCLI()
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()

			member := s.deps.CurrentUser()
			if member == nil {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			if refresh {
				ctx, cancel := requestContext(cmd, s)
				defer cancel()
				fresh, err := s.deps.Client.GetProfile(ctx)
				if err != nil {
					return fmt.Errorf("loading profile: %w", err)
				}
				if err := s.deps.Store.SetUser(fresh); err != nil {
					return err
				}
				member = fresh
			}

			fmt.Fprintf(out, "%s <%s>\n", member.Name, member.Email)
			if claims, err := api.TokenClaims(s.deps.Store.Token()); err == nil && claims.ExpiresAt != nil {
				exp := claims.ExpiresAt.Time
				if exp.After(time.Now()) {
					fmt.Fprintf(out, "access token expires %s\n", humanize.Time(exp))
				} else {
					fmt.Fprintln(out, "access token expired, it is refreshed on the next request")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the profile from the server")
	return cmd
}
