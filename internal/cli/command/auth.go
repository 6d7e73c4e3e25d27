package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/unionhub-go/internal/cli/locale"
	"github.com/yndnr/unionhub-go/internal/cli/router"
	"github.com/yndnr/unionhub-go/internal/cli/session"
)

// navigatorFunc adapts a function to session.Navigator.
type navigatorFunc func(ctx context.Context, path string) error

func (f navigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

var _ session.Navigator = navigatorFunc(nil)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Account name",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Password (prompted when omitted)",
		},
	}
}

func (st *state) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and open the requested view",
		Flags: append(credentialFlags(),
			&cli.StringFlag{
				Name:  "redirect",
				Usage: "Route to open after login (default: the route that required login, else /unions)",
			},
		),
		Action: st.login,
	}
}

func (st *state) registerCommand() *cli.Command {
	return &cli.Command{
		Name:   "register",
		Usage:  "Create an account",
		Flags:  credentialFlags(),
		Action: st.register,
	}
}

func (st *state) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored token",
		Action: st.logout,
	}
}

func (st *state) whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user",
		Action: st.whoami,
	}
}

// password returns the --password flag or prompts for it.
func (st *state) password(c *cli.Context) (string, error) {
	if c.IsSet("password") {
		return c.String("password"), nil
	}
	fmt.Fprint(st.errOut, "Password: ")
	if fd, ok := terminalFd(st.in); ok {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(st.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	p, err := st.readLine(c.Context)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return p, nil
}

// terminalFd returns the descriptor of r when r is an interactive terminal.
func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func (st *state) login(c *cli.Context) error {
	rt := st.rt
	username := c.String("username")
	password, err := st.password(c)
	if err != nil {
		return err
	}

	redirect := c.String("redirect")
	if redirect == "" {
		redirect = rt.Router.RedirectTarget()
	}

	stop := rt.spin("Signing in")
	defer stop()

	rt.Session.SetNavigator(navigatorFunc(func(ctx context.Context, path string) error {
		stop()
		rt.Say(locale.MsgLoggedIn, username)
		return rt.Router.Navigate(ctx, path)
	}))
	defer rt.Session.SetNavigator(rt.Router)

	if err := rt.Session.Login(c.Context, username, password, redirect); err != nil {
		return &credentialsError{err: err}
	}
	return nil
}

// credentialsError marks a failure of the login request itself, so that a
// 401 is read as bad credentials rather than a rejected session.
type credentialsError struct {
	err error
}

func (e *credentialsError) Error() string { return e.err.Error() }
func (e *credentialsError) Unwrap() error { return e.err }

func (st *state) register(c *cli.Context) error {
	rt := st.rt
	username := c.String("username")
	password, err := st.password(c)
	if err != nil {
		return err
	}

	if err := rt.Session.Register(c.Context, username, password); err != nil {
		return err
	}
	rt.Say(locale.MsgRegistered, username)
	_, err = rt.Router.Resolve(c.Context, router.PathLogin)
	return err
}

func (st *state) logout(c *cli.Context) error {
	rt := st.rt
	if err := rt.Session.Logout(c.Context); err != nil {
		return err
	}
	rt.Say(locale.MsgLoggedOut)
	return nil
}

// whoamiInfo is the whoami output.
type whoamiInfo struct {
	Username  string     `json:"username" yaml:"username" table:"USERNAME"`
	State     string     `json:"state" yaml:"state" table:"STATE"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty" table:"EXPIRES"`
	Expired   bool       `json:"expired" yaml:"expired" table:"EXPIRED"`
	Server    string     `json:"server" yaml:"server" table:"SERVER"`
}

func (st *state) whoami(c *cli.Context) error {
	rt := st.rt
	if !rt.Session.IsAuthenticated() {
		rt.Say(locale.MsgNotLoggedIn)
		return nil
	}

	info := whoamiInfo{
		State:  rt.Session.State().String(),
		Server: rt.Client.BaseURL(),
	}
	if u := rt.Session.User(); u != nil {
		info.Username = u.Username
		info.Expired = u.Expired(time.Now())
		if !u.ExpiresAt.IsZero() {
			exp := u.ExpiresAt
			info.ExpiresAt = &exp
		}
	}
	return rt.Printer.Print(info)
}
