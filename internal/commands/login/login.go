package login

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/user/opsboard/internal/app"
)

var (
	globals       *app.Options
	username      string
	passwordStdin bool
)

func NewLoginCommand(opts *app.Options) *cobra.Command {
	globals = opts
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE:  runLogin,
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func NewLogoutCommand(opts *app.Options) *cobra.Command {
	globals = opts
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE:  runLogout,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Open(ctx, *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stdin := bufio.NewReader(cmd.InOrStdin())

	user := strings.TrimSpace(username)
	if user == "" {
		cmd.Print("Username: ")
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading username: %w", err)
		}
		user = strings.TrimSpace(line)
	}
	if user == "" {
		return errors.New("username is required")
	}

	password, err := readPassword(cmd, stdin)
	if err != nil {
		return err
	}

	if _, err := a.Session.Login(ctx, user, password); err != nil {
		return fmt.Errorf("login failed: %w", a.Explain(err))
	}

	cmd.Printf("Logged in to %s as %s\n", a.Config.APIURL, user)
	return nil
}

func readPassword(cmd *cobra.Command, stdin *bufio.Reader) (string, error) {
	if passwordStdin {
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", errors.New("password is empty")
		}
		return password, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no terminal for password prompt (use --password-stdin)")
	}

	cmd.Print("Password: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(pass) == 0 {
		return "", errors.New("password is empty")
	}
	return string(pass), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := app.Open(cmd.Context(), *globals)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if !a.Session.Authenticated() {
		cmd.Println("Not logged in")
		return nil
	}

	a.Session.Invalidate()
	cmd.Println("Logged out")
	return nil
}
