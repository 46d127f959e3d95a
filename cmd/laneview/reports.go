package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/laneview/laneview/internal/client"
	"github.com/laneview/laneview/internal/common"
)

// printReload renders the outcome of a full reload: the grouped dashboard
// tables followed by the sector commentary.
func printReload(reload *client.ReloadResult) {
	if reload == nil {
		return
	}
	var b strings.Builder
	b.WriteString(client.RenderDashboard(reload.Dashboard))
	b.WriteString("\n## Sector Insights\n\n")
	b.WriteString(reload.SectorText)
	b.WriteString("\n")
	printMarkdown(b.String())
}

// dashboardCmd runs the full reload and renders everything.
type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "render the segment-grouped metrics dashboard" }
func (*dashboardCmd) Usage() string {
	return `laneview dashboard

  Loads the company list and metrics concurrently, then the sector
  commentary, and renders one table per logistics segment.
`
}
func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	reload, err := api.FullReload(ctx)
	if err != nil {
		return fail(err)
	}
	printReload(reload)
	return subcommands.ExitSuccess
}

// showCmd renders one company's detail bundle, then its commentary.
type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "render a company's profile, ratios and statements" }
func (*showCmd) Usage() string {
	return `laneview show <id>

  Renders the company snapshot, the key ratio table and the financial
  statements, followed by AI commentary on the company.
`
}
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	detail, err := api.CompanyDetail(ctx, target.ID)
	if err != nil {
		return fail(err)
	}

	// Commentary failures degrade to their message under the same heading,
	// the way the analytics panel does.
	insights, aerr := api.CompanyAnalytics(ctx, target.ID)
	if aerr != nil {
		insights = aerr.Error()
	}

	var b strings.Builder
	b.WriteString(client.RenderDetail(detail))
	b.WriteString("\n## Company Insights\n\n")
	b.WriteString(insights)
	b.WriteString("\n")
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// sectorCmd renders the portfolio-wide commentary.
type sectorCmd struct{}

func (*sectorCmd) Name() string     { return "sector" }
func (*sectorCmd) Synopsis() string { return "render AI commentary on the portfolio's segments" }
func (*sectorCmd) Usage() string {
	return `laneview sector

  Renders AI commentary across the registered logistics segments.
`
}
func (*sectorCmd) SetFlags(*flag.FlagSet) {}

func (c *sectorCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	text, err := api.SectorAnalytics(ctx)
	if err != nil {
		text = err.Error()
	}
	printMarkdown("# Sector Insights\n\n" + text + "\n")
	return subcommands.ExitSuccess
}

// chartCmd saves the revenue-by-segment chart PNG.
type chartCmd struct {
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "save the revenue-by-segment bar chart as PNG" }
func (*chartCmd) Usage() string {
	return `laneview chart [-o <file.png>]

  Fetches the revenue-by-segment bar chart and writes it to a PNG file.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "revenue.png", "Output PNG path.")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	api, err := newClient()
	if err != nil {
		return fail(err)
	}
	png, err := api.Chart(ctx)
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(c.output, png, 0644); err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes).\n", c.output, len(png))
	return subcommands.ExitSuccess
}

// versionCmd prints build information.
type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print version information" }
func (*versionCmd) Usage() string {
	return `laneview version

  Prints version, build and commit.
`
}
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (c *versionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Printf("laneview %s (build %s, commit %s)\n", common.Version, common.Build, common.GitCommit)
	return subcommands.ExitSuccess
}
