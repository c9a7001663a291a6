package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/arnavsurve/rowpilot/cmd/cli"
	"github.com/joho/godotenv"
)

var CLI struct {
	cli.Globals

	Run  cli.RunCmd  `cmd:"" help:"Run a workflow once per dataset row."`
	Lint cli.LintCmd `cmd:"" help:"Validate a workflow and its dataset without opening a browser."`
	Pick cli.PickCmd `cmd:"" help:"Open a page, click an element and print a selector for it."`
	Heal cli.HealCmd `cmd:"" help:"Find out why a selector stopped matching and pick a replacement."`
}

func main() {
	// .env must be loaded before kong resolves env-backed flags.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&CLI,
		kong.Name("rowpilot"),
		kong.Description("Row-driven browser automation with self-healing selectors."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	CLI.Globals.EnvErr = envErr

	err := kctx.Run(&CLI.Globals)
	stop()
	kctx.FatalIfErrorf(err)
}
