package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
)

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("blogbuild"),
		kong.Description("Incremental static blog generator: Markdown posts with math to HTML pages."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx)
	stop()

	errors.NewCLIErrorAdapter(parseLogLevel() <= slog.LevelDebug, slog.Default()).HandleError(err)
}
