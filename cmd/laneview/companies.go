package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/laneview/laneview/internal/client"
)

// companiesCmd lists the registered companies.
type companiesCmd struct{}

func (*companiesCmd) Name() string     { return "companies" }
func (*companiesCmd) Synopsis() string { return "list the registered companies" }
func (*companiesCmd) Usage() string {
	return `laneview companies

  Lists the registered companies with the ids 'rm' and 'show' take.
`
}
func (*companiesCmd) SetFlags(*flag.FlagSet) {}

func (c *companiesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	companies, err := api.Companies(ctx)
	if err != nil {
		return fail(err)
	}
	printMarkdown(client.RenderCompanies(companies))
	return subcommands.ExitSuccess
}

// addCmd registers one company.
type addCmd struct {
	name    string
	ticker  string
	segment string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "register a company and refresh the dashboard" }
func (*addCmd) Usage() string {
	return `laneview add -name <name> -ticker <ticker> -segment <segment>

  Registers a company under one of the logistics segments and reloads the
  dashboard. Valid segments: PORTS, SHIPPING, ROADS & HIGHWAYS, CONTAINER,
  GENERAL LOGISTICS, PARCEL & EXPRESS.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Company name.")
	f.StringVar(&c.ticker, "ticker", "", "Provider ticker, e.g. MAERSK-B.CO.")
	f.StringVar(&c.segment, "segment", "", "Logistics segment.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	created, reload, err := api.CreateCompany(ctx, c.name, c.ticker, c.segment)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stderr, "Added %s (%s).\n", created.Name, created.Ticker)
	printReload(reload)
	return subcommands.ExitSuccess
}

// rmCmd deletes one company after confirmation.
type rmCmd struct {
	yes bool
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a company and refresh the dashboard" }
func (*rmCmd) Usage() string {
	return `laneview rm [-y] <id>

  Deletes the company with the given id after a confirmation prompt.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Skip the confirmation prompt.")
}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one company id is required")
		return subcommands.ExitUsageError
	}
	api, err := newClient()
	if err != nil {
		return fail(err)
	}

	target, err := findCompany(ctx, api, f.Arg(0))
	if err != nil {
		return fail(err)
	}

	deleted, reload, err := api.DeleteCompany(ctx, *target, func(co client.Company) bool {
		if c.yes {
			return true
		}
		return confirm(fmt.Sprintf("Delete %s (%s)?", co.Name, co.Ticker))
	})
	if err != nil {
		return fail(err)
	}
	if !deleted {
		fmt.Fprintln(os.Stderr, "Aborted.")
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Deleted %s.\n", target.Name)
	printReload(reload)
	return subcommands.ExitSuccess
}

// findCompany resolves an id (or ticker) against the company list.
func findCompany(ctx context.Context, api *client.Client, key string) (*client.Company, error) {
	companies, err := api.Companies(ctx)
	if err != nil {
		return nil, err
	}
	for i := range companies {
		if companies[i].ID == key || companies[i].Ticker == key {
			return &companies[i], nil
		}
	}
	return nil, fmt.Errorf("no company with id or ticker %q; run 'laneview companies'", key)
}

// importCmd bulk-registers companies from a brokerage holdings PDF.
type importCmd struct {
	segment string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "register companies from a holdings PDF" }
func (*importCmd) Usage() string {
	return `laneview import -segment <segment> <holdings.pdf>

  Parses ticker and name rows out of a brokerage holdings PDF and
  registers each under the given segment, then reloads the dashboard once.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.segment, "segment", "", "Logistics segment for every imported company.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one PDF path is required")
		return subcommands.ExitUsageError
	}
	api, err := newClient()
	if err != nil {
		return fail(err)
	}

	outcomes, reload, err := api.ImportCompaniesPDF(ctx, f.Arg(0), c.segment)
	if err != nil {
		return fail(err)
	}

	created := 0
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", o.Row.Ticker, o.Err)
			continue
		}
		created++
		fmt.Fprintf(os.Stderr, "Added %s (%s).\n", o.Row.Name, o.Row.Ticker)
	}
	fmt.Fprintf(os.Stderr, "Imported %d of %d holdings.\n", created, len(outcomes))
	printReload(reload)
	return subcommands.ExitSuccess
}
