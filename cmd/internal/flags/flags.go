// Package flags wires up the shared flag, config, and logging surface of
// the centrifuge binary. Flags can also come from the environment or a
// config file via flagconf.
package flags

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.senan.xyz/flagconf"

	"go.senan.xyz/centrifuge"
	"go.senan.xyz/centrifuge/clientutil"
	"go.senan.xyz/centrifuge/lastfm"
	"go.senan.xyz/centrifuge/notifications"
	"go.senan.xyz/centrifuge/release"
	"go.senan.xyz/centrifuge/validator"
)

func EnvPrefix(prefix string) {
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string {
		return prefix
	}
}

// afterParse holds hooks that need parsed flag values, eg building the
// catalog cache from -cache-dir and -cache-ttl.
var afterParse []func()

func Parse() {
	userConfig, _ := os.UserConfigDir()
	defaultConfigPath := filepath.Join(userConfig, centrifuge.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "path config file")

	printVersion := flag.Bool("version", false, "print the version")
	printConfig := flag.Bool("config", false, "print the parsed config")

	flag.TextVar(&logLevel, "log-level", &logLevel, "set the logging level")

	flag.Parse()
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), centrifuge.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-16s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}

	for _, f := range afterParse {
		f()
	}
}

// Set reports whether the named flag was set anywhere, command line,
// environment, or config file.
func Set(name string) bool {
	var set bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func Config() *centrifuge.Config {
	v := &validator.Validator{Catalog: Catalog()}
	flag.Var(expungeParser{v}, "expunge-comments-with-substring", "clear comment tags containing the given substring")

	var cfg centrifuge.Config
	cfg.Validator = v
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "dry run")
	flag.BoolVar(&cfg.GroupByArtist, "group-by-artist", false, "group moved releases under an artist folder")
	flag.BoolVar(&cfg.GroupByCategory, "group-by-category", false, "group moved releases under a category folder, guessed from the destination when unset")
	flag.BoolVar(&cfg.FullCodecNames, "full-codec-names", false, "always include the codec container in folder names")
	flag.StringVar(&cfg.DestDir, "move-fixed-to", "", "move clean releases into the given folder")
	flag.Var(&kindParser{&cfg.InvalidKind}, "move-invalid", "violation kind that sends a release to the invalid folder, one of "+release.KindsString())
	flag.StringVar(&cfg.InvalidDestDir, "move-invalid-to", "", "move still invalid releases into the given folder")
	flag.StringVar(&cfg.DuplicateDir, "move-duplicate-to", "", "move lower quality duplicates into the given folder")
	flag.Var(&hookParser{&cfg.PostFixHook}, "post-fix-hook", `command to run per fixed release, "<dir>" is replaced with the release path`)
	return &cfg
}

func Catalog() *lastfm.Client {
	var c lastfm.Client
	c.HTTPClient = http.DefaultClient
	flag.StringVar(&c.BaseURL, "lastfm-base-url", lastfm.DefaultBaseURL, "reference catalog base url")
	flag.DurationVar(&c.RateLimit, "lastfm-rate-limit", 1*time.Second, "reference catalog rate limit duration")

	userCache, _ := os.UserCacheDir()
	cacheDir := flag.String("cache-dir", filepath.Join(userCache, centrifuge.Name), "reference catalog cache directory, empty to disable caching")
	cacheTTL := flag.Duration("cache-ttl", lastfm.DefaultCacheTTL, "reference catalog cache entry lifetime")
	afterParse = append(afterParse, func() {
		if *cacheDir != "" {
			c.Cache = clientutil.NewDiskCache(*cacheDir, *cacheTTL)
		}
	})
	return &c
}

func Notifications() *notifications.Notifications {
	var n notifications.Notifications
	flag.Var(notificationsParser{&n}, "notification-uri", `add a shoutrrr notification uri for an event, eg "complete,error <uri>"`)
	return &n
}

var httpClient *http.Client

func init() {
	httpClient = &http.Client{Transport: clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(fmt.Sprintf(`%s/%s`, centrifuge.Name, centrifuge.Version)),
	)(http.DefaultTransport)}

	http.DefaultClient = httpClient
}
