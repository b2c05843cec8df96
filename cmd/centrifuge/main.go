package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.senan.xyz/table/table"

	"go.senan.xyz/centrifuge"
	"go.senan.xyz/centrifuge/cmd/internal/flags"
	"go.senan.xyz/centrifuge/notifications"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] releases <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] validate <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] fix <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

var dmp = diffmatchpatch.New()

var (
	styleClean = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleMinor = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBad   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	defer flags.ExitError()
	var (
		cfg            = flags.Config()
		notifs         = flags.Notifications()
		moveFixed      = flag.Bool("move-fixed", false, "move clean releases into the scan root")
		showViolations = flag.Bool("show-violations", false, "print each violation, not just the count")
	)
	flags.EnvPrefix(centrifuge.Name)
	flags.Parse()

	mode, pathArg := flag.Arg(0), flag.Arg(1)
	if mode == "" || pathArg == "" {
		flag.Usage()
		os.Exit(2)
	}
	root, err := filepath.Abs(pathArg)
	if err != nil {
		slog.Error("resolve path", "path", pathArg, "err", err)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case "releases":
		dirs, err := centrifuge.ListReleases(root)
		if err != nil {
			slog.ErrorContext(ctx, "list releases", "err", err)
			return
		}
		for _, dir := range dirs {
			fmt.Println(dir)
		}
		fmt.Printf("%d releases\n", len(dirs))

	case "validate", "fix":
		if *moveFixed && cfg.DestDir != "" {
			slog.Error("-move-fixed and -move-fixed-to are mutually exclusive")
			return
		}
		if *moveFixed {
			cfg.DestDir = root
		}
		if (cfg.InvalidKind == "") != (cfg.InvalidDestDir == "") {
			slog.Error("-move-invalid and -move-invalid-to must be used together")
			return
		}
		for _, dest := range []string{cfg.DestDir, cfg.InvalidDestDir, cfg.DuplicateDir} {
			if dest == "" {
				continue
			}
			if info, err := os.Stat(dest); err != nil || !info.IsDir() {
				slog.Error("destination is not a directory", "path", dest)
				return
			}
		}
		if !flags.Set("group-by-category") {
			cfg.GroupByCategory = centrifuge.GuessGroupByCategory(cmp.Or(cfg.DestDir, root))
		}

		var results []centrifuge.Result
		collect := func(res centrifuge.Result) {
			results = append(results, res)
		}

		if mode == "validate" {
			err = centrifuge.ValidateReleases(ctx, cfg, root, collect)
		} else {
			err = centrifuge.FixReleases(ctx, cfg, root, collect)
		}

		printResults(cfg, results, *showViolations)

		var clean int
		for _, res := range results {
			if len(res.After) == 0 {
				clean++
			}
		}
		fmt.Printf("%d/%d clean releases\n", clean, len(results))

		if err != nil {
			slog.ErrorContext(ctx, "run over releases", "mode", mode, "err", err)
			notifs.Sendf(ctx, notifications.Error, "%s run over %q failed: %v", mode, root, err)
			return
		}
		if mode == "fix" {
			notifs.Sendf(ctx, notifications.Complete, "fixed %d of %d releases under %q", clean, len(results), root)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printResults(cfg *centrifuge.Config, results []centrifuge.Result, showViolations bool) {
	t := table.NewStringWriter()
	for _, res := range results {
		fmt.Fprintf(t, "%s\t%s\n", styleCount(len(res.After)), res.FinalDir)
	}
	for _, row := range strings.Split(strings.TrimRight(t.String(), "\n"), "\n") {
		if row != "" {
			fmt.Println(row)
		}
	}

	if !showViolations {
		return
	}
	for _, res := range results {
		if len(res.After) == 0 {
			continue
		}
		fmt.Printf("%s\n", res.FinalDir)
		for _, v := range res.After {
			fmt.Printf("  %s\n", v)
		}
		if name := filepath.Base(res.FinalDir); res.Release.CanValidateFolderName() {
			if want := res.Release.FolderName(!cfg.FullCodecNames, cfg.GroupByCategory); want != name {
				fmt.Printf("  name diff: %s\n", dmp.DiffPrettyText(dmp.DiffMain(name, want, false)))
			}
		}
	}
}

func styleCount(n int) string {
	switch {
	case n == 0:
		return styleClean.Render("0")
	case n <= 2:
		return styleMinor.Render(strconv.Itoa(n))
	default:
		return styleBad.Render(strconv.Itoa(n))
	}
}
