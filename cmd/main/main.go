package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/census/internal/app"
	"github.com/maxbolgarin/census/internal/config"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	debug      = kingpin.Flag("debug", "enable debug logging").Bool()

	fetchCmd    = kingpin.Command("fetch", "fetch matching commits and write the dataset file")
	fetchQuery  = fetchCmd.Flag("query", "literal phrase to search for").String()
	fetchOut    = fetchCmd.Flag("out", "dataset output path").String()
	fetchEnrich = fetchCmd.Flag("enrich-repos", "fetch repository metadata for matched repos").Bool()

	serveCmd     = kingpin.Command("serve", "serve the census dashboard")
	serveAddress = serveCmd.Flag("address", "listen address").String()
)

func main() {
	command := kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx, command)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context, command string) error {
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}
	applyFlags(&cfg)

	level := logze.LevelInfo
	if *debug {
		level = logze.LevelDebug
	}
	logze.Init(logze.C().WithConsole().WithLevel(level))

	service, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "new census")
	}

	switch command {
	case fetchCmd.FullCommand():
		return service.RunFetch(ctx)
	case serveCmd.FullCommand():
		return service.StartDashboard(ctx)
	}
	return erro.New("unknown command: %s", command)
}

// applyFlags lets command line flags override file and environment values.
func applyFlags(cfg *config.Config) {
	if *fetchQuery != "" {
		cfg.Fetch.Query = *fetchQuery
	}
	if *fetchOut != "" {
		cfg.Fetch.Output = *fetchOut
	}
	if *fetchEnrich {
		cfg.Fetch.EnrichRepos = true
	}
	if *serveAddress != "" {
		cfg.Server.Address = *serveAddress
	}
}
