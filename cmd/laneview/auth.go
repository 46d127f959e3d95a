package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/laneview/laneview/internal/client"
)

// loginCmd holds the flags for the 'login' subcommand.
type loginCmd struct {
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in and store the session token" }
func (*loginCmd) Usage() string {
	return `laneview login -u <username> [-p <password>]

  Exchanges credentials for an access token and stores the session.
  With -p omitted the password is prompted for without echo.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username or email address.")
	f.StringVar(&c.password, "p", "", "Password. Prompted when omitted.")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	if c.password == "" {
		c.password, err = promptPassword("Password")
		if err != nil {
			return fail(err)
		}
	}
	if err := api.Login(ctx, c.username, c.password); err != nil {
		return fail(err)
	}
	fmt.Printf("Logged in as %s.\n", c.username)
	return subcommands.ExitSuccess
}

// logoutCmd clears the stored session.
type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "clear the stored session" }
func (*logoutCmd) Usage() string {
	return `laneview logout

  Removes the stored session token.
`
}
func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (c *logoutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	if err := api.Logout(); err != nil {
		return fail(err)
	}
	fmt.Println("Logged out.")
	return subcommands.ExitSuccess
}

// registerCmd holds the flags for the 'register' subcommand.
type registerCmd struct {
	email    string
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new account" }
func (*registerCmd) Usage() string {
	return `laneview register -e <email> -u <username> [-p <password>]

  Creates an account. A verification link is emailed; open it with
  'laneview open <url>' before logging in.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "e", "", "Email address for verification.")
	f.StringVar(&c.username, "u", "", "Username.")
	f.StringVar(&c.password, "p", "", "Password. Prompted when omitted.")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	if c.password == "" {
		c.password, err = promptPassword("Password")
		if err != nil {
			return fail(err)
		}
	}
	message, err := api.Register(ctx, c.email, c.username, c.password)
	if err != nil {
		return fail(err)
	}
	fmt.Println(message)
	return subcommands.ExitSuccess
}

// openCmd consumes an emailed verification or reset link.
type openCmd struct{}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "consume an emailed verification or reset link" }
func (*openCmd) Usage() string {
	return `laneview open <url>

  Handles a link from a verification or password-reset email. The token
  parameter is consumed with a single backend call and the cleaned URL is
  printed; re-opening the cleaned URL does nothing.
`
}
func (*openCmd) SetFlags(*flag.FlagSet) {}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one URL is required")
		return subcommands.ExitUsageError
	}
	api, err := newClient()
	if err != nil {
		return fail(err)
	}

	clean, action, message, err := api.HandleStartupURL(ctx, f.Arg(0), func() (string, error) {
		return promptPassword("New password")
	})
	if err != nil {
		return fail(err)
	}
	if action == client.StartupNone {
		fmt.Println("Nothing to do: the URL carries no verification or reset token.")
		return subcommands.ExitSuccess
	}
	fmt.Println(message)
	fmt.Printf("Cleaned URL: %s\n", clean)
	return subcommands.ExitSuccess
}

// forgotPasswordCmd requests a password reset link.
type forgotPasswordCmd struct {
	email string
}

func (*forgotPasswordCmd) Name() string     { return "forgot-password" }
func (*forgotPasswordCmd) Synopsis() string { return "request a password reset link" }
func (*forgotPasswordCmd) Usage() string {
	return `laneview forgot-password -e <email>

  Requests a reset link. The confirmation reads the same whether or not
  the address is registered.
`
}

func (c *forgotPasswordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "e", "", "Email address the account was registered with.")
}

func (c *forgotPasswordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	message, err := api.ForgotPassword(ctx, c.email)
	if err != nil {
		return fail(err)
	}
	fmt.Println(message)
	return subcommands.ExitSuccess
}
