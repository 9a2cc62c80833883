/*
tradebump keeps your trade listings near the top of the public trade list by
periodically re-saving them.

Have a look at the README.md for more information.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/tradebump/tradebump/internal/bump"
	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/credentials"
	"github.com/tradebump/tradebump/internal/discovery"
	"github.com/tradebump/tradebump/internal/driver"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/output"
	"github.com/tradebump/tradebump/internal/prompt"
	"github.com/tradebump/tradebump/internal/scheduler"
	"github.com/tradebump/tradebump/internal/session"
	"github.com/tradebump/tradebump/internal/types"
	"github.com/tradebump/tradebump/internal/utils"
)

var version = "dev"

type VersionFlag string

func (v VersionFlag) Decode(_ *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                       { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

type cli struct {
	Version VersionFlag `short:"v" long:"version" help:"Print the version and exit."`
	Debug   bool        `short:"d" long:"debug" help:"Set log level to 'debug' and store screenshots of failed bumps."`
	Config  string      `short:"c" default:"./tradebump.yaml" help:"The location of the configuration file. Defaults are used if it does not exist." type:"path"`

	Bump  BumpCmd  `cmd:"" help:"Log in and bump your trades on a recurring interval until stopped."`
	Login LoginCmd `cmd:"" help:"Enter and store the credentials used for logging in."`
}

type BumpCmd struct {
	Target   string `arg:"" optional:"" default:"all" help:"Which trades to bump, 'all' or 'oldest'."`
	Interval string `arg:"" optional:"" default:"15" help:"Minutes to wait between two bump cycles."`
}

func (b *BumpCmd) Run(c *cli) error {
	rc, err := parseRunConfig(b.Target, b.Interval)
	if err != nil {
		return err
	}

	conf, err := config.NewConfig(c.Config)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}

	store, err := credentials.NewFileStore(config.AppName, conf.CredentialsFile)
	if err != nil {
		return err
	}
	creds, err := credentials.Load(store)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}

	writer, err := output.NewWriter(&conf.Output)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := driver.NewChromeDriver(ctx, &conf.Browser)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	defer d.Close()

	manager := session.NewManager(&conf.Site, d)
	sess, err := manager.Login(ctx, creds)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}

	s := scheduler.New(scheduler.Options{
		Session:       sess,
		Credentials:   creds,
		RunConfig:     rc,
		Authenticator: manager,
		Discoverer:    discovery.New(&conf.Site),
		Bumper:        bump.NewExecutor(&conf.Site, conf.Browser.DebugDir),
		Writer:        writer,
		Locale:        conf.Locale,
	})
	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("received stop signal, closing browser")
		return nil
	}
	return err
}

type LoginCmd struct{}

func (l *LoginCmd) Run(c *cli) error {
	conf, err := config.NewConfig(c.Config)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	store, err := credentials.NewFileStore(config.AppName, conf.CredentialsFile)
	if err != nil {
		return err
	}

	creds, err := prompt.Login(&prompt.FormPrompter{Title: "tradebump login"}, store)
	var inputErr *prompt.CredentialInputError
	if errors.As(err, &inputErr) {
		fmt.Println(inputErr.Error())
		return nil
	}
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}

	slog.Info(fmt.Sprintf("saved credentials of %s to %s", creds.Username, store.Path()))
	return nil
}

func parseRunConfig(target, interval string) (types.RunConfig, error) {
	t, err := types.ParseTarget(target)
	if err != nil {
		names := make([]string, 0, len(types.Targets))
		for _, n := range types.Targets {
			names = append(names, string(n))
		}
		if m := utils.ClosestMatch(strings.ToLower(target), names, 2); m != "" {
			return types.RunConfig{}, fmt.Errorf("%w. Did you mean '%s'?", err, m)
		}
		return types.RunConfig{}, err
	}

	if interval == "" || !utils.OnlyContainsDigits(interval) {
		return types.RunConfig{}, fmt.Errorf("interval must be a positive number of minutes, got '%s'", interval)
	}
	minutes, err := strconv.Atoi(interval)
	if err != nil || minutes <= 0 {
		return types.RunConfig{}, fmt.Errorf("interval must be a positive number of minutes, got '%s'", interval)
	}

	return types.RunConfig{Target: t, IntervalMinutes: minutes}, nil
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			return buildInfo.Main.Version
		}
	}
	return version
}

func main() {
	cli := cli{
		Version: VersionFlag(getVersion()),
	}

	ctx := kong.Parse(&cli,
		kong.Name(config.AppName),
		kong.Description("Keeps your trade listings at the top by bumping them on an interval."),
		kong.Vars{
			"version": string(cli.Version),
		})

	log.Debug = cli.Debug
	log.InitializeDefaultLogger()

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
