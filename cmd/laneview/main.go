package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/laneview/laneview/internal/client"
	"github.com/laneview/laneview/internal/common"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.FlagsCommand(), "")
	commander.Register(&versionCmd{}, "")

	commander.Register(&loginCmd{}, "account")
	commander.Register(&logoutCmd{}, "account")
	commander.Register(&registerCmd{}, "account")
	commander.Register(&openCmd{}, "account")
	commander.Register(&forgotPasswordCmd{}, "account")

	commander.Register(&companiesCmd{}, "portfolio")
	commander.Register(&addCmd{}, "portfolio")
	commander.Register(&rmCmd{}, "portfolio")
	commander.Register(&importCmd{}, "portfolio")

	commander.Register(&dashboardCmd{}, "reports")
	commander.Register(&showCmd{}, "reports")
	commander.Register(&sectorCmd{}, "reports")
	commander.Register(&chartCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// newClient builds the API client from config. LANEVIEW_SERVER_URL and
// LANEVIEW_SESSION_FILE override the config file.
func newClient() (*client.Client, error) {
	cfg, err := common.LoadConfig(os.Getenv("LANEVIEW_CONFIG"))
	if err != nil {
		return nil, err
	}
	store, err := client.NewSessionStore(cfg.Client.SessionFile)
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger(cfg.Logging.Level)
	return client.New(cfg.Client.ServerURL, store, logger), nil
}

// printMarkdown renders markdown for the terminal. When stdout is not a
// TTY the raw markdown passes through unchanged so output stays pipeable.
func printMarkdown(md string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// promptPassword reads a password from stdin, without echo on a TTY.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question on stderr and reads the answer.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return isYes(line)
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}

// fail prints an error and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
