package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/games-client/livefeed"
	"github.com/radieske/sports-games-client/internal/games-client/session"
	"github.com/radieske/sports-games-client/internal/games-client/viewmodel"
	"github.com/radieske/sports-games-client/internal/shared/metrics"
	"github.com/radieske/sports-games-client/pkg/contracts/events"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

var errUsage = errors.New("usage")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		a.restore(ctx)
		if err := a.vm.Load(ctx, filterArg(args)); err != nil {
			return err
		}
		printGames(os.Stdout, a.vm.State())
	case "refresh":
		a.restore(ctx)
		if err := a.vm.Refresh(ctx); err != nil {
			return err
		}
		printGames(os.Stdout, a.vm.State())
	case "create":
		return a.create(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	case "greet":
		name := "Team12"
		if len(args) > 0 {
			name = args[0]
		}
		text, err := a.client.Greeting(ctx, name)
		if err != nil {
			printNotice(viewmodel.Notice{Title: "Error", Message: err.Error()})
			return err
		}
		fmt.Println(text)
	case "whoami":
		s, err := a.session.Current(ctx)
		if errors.Is(err, session.ErrNoSession) {
			fmt.Println("not logged in")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s (id %d) since %s\n", s.Username, s.UserID, s.CreatedAt.Format("2006-01-02 15:04"))
	case "logout":
		return a.session.Logout(ctx)
	case "prefs":
		return a.prefs(ctx, args)
	case "reset":
		return a.store.ClearAll(ctx)
	default:
		return errUsage
	}
	return nil
}

// restore mostra o cache enquanto a rede responde; erro só é logado
func (a *app) restore(ctx context.Context) {
	if err := a.vm.Restore(ctx); err != nil {
		a.log.Warn("cache restore failed", zap.Error(err))
	}
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var d games.GameDraft
	fs.StringVar(&d.League, "league", "", "liga")
	fs.StringVar(&d.HomeTeam, "home", "", "time da casa")
	fs.StringVar(&d.AwayTeam, "away", "", "time visitante")
	fs.StringVar(&d.StartTime, "start", "", "início, ISO-8601")
	fs.StringVar(&d.Status, "status", games.StatusScheduled, "scheduled | live | completed")
	fs.Float64Var(&d.OddsHome, "odds-home", 0, "odd do time da casa")
	fs.Float64Var(&d.OddsAway, "odds-away", 0, "odd do visitante")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	a.restore(ctx)
	g, err := a.vm.Create(ctx, d)
	if err != nil && g.ID == nil {
		return err
	}
	fmt.Printf("created game %d\n", g.IDValue())
	printGames(os.Stdout, a.vm.State())
	return err
}

func (a *app) watch(ctx context.Context, args []string) error {
	srv := metrics.StartMetricsServer(a.cfg.MetricsPort, a.store.Ping, a.log)
	if srv != nil {
		defer srv.Close()
	}

	updates, cancel := a.vm.Subscribe()
	defer cancel()

	a.restore(ctx)
	go func() { _ = a.vm.Load(ctx, filterArg(args)) }()

	if a.cfg.LiveFeedURL != "" {
		l := &livefeed.Listener{
			URL: a.cfg.LiveFeedURL,
			Log: a.log,
			OnCreated: func(ctx context.Context, ev events.GameCreated) error {
				a.log.Info("game created upstream", zap.Int64("id", ev.Game.IDValue()))
				return a.vm.Refresh(ctx)
			},
		}
		go l.Start(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-updates:
			if st.IsLoading {
				continue
			}
			fmt.Print("\033[H\033[2J")
			printGames(os.Stdout, st)
		}
	}
}

func (a *app) prefs(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		teams, err := a.session.FavoriteTeams(ctx)
		if err != nil {
			return err
		}
		theme, err := a.session.Theme(ctx)
		if err != nil {
			return err
		}
		done, err := a.session.OnboardingComplete(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("favorites: %s\ntheme: %s\nonboarded: %v\n", strings.Join(teams, ", "), theme, done)
		return nil
	}

	switch {
	case args[0] == "theme" && len(args) == 2:
		return a.session.SetTheme(ctx, session.Theme(args[1]))
	case args[0] == "favorites" && len(args) == 2:
		var teams []string
		for _, t := range strings.Split(args[1], ",") {
			if t = strings.TrimSpace(t); t != "" {
				teams = append(teams, t)
			}
		}
		return a.session.SetFavoriteTeams(ctx, teams)
	case args[0] == "onboarded":
		return a.session.CompleteOnboarding(ctx)
	}
	return errUsage
}

func filterArg(args []string) games.StatusFilter {
	if len(args) == 0 || args[0] == "all" {
		return games.AllStatuses
	}
	return games.StatusFilter(args[0])
}

func printGames(w io.Writer, st viewmodel.State) {
	filter := string(st.ActiveFilter)
	if st.ActiveFilter.IsAll() {
		filter = "all"
	}
	synced := "never"
	if !st.LastSync.IsZero() {
		synced = st.LastSync.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(w, "filter: %s  last sync: %s  games: %d\n\n", filter, synced, len(st.Items))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLEAGUE\tHOME\tAWAY\tSTART\tSTATUS\tODDS")
	for _, g := range st.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%.2f / %.2f\n",
			g.IDValue(), g.League, g.HomeTeam, g.AwayTeam, g.StartTime, g.Status, g.OddsHome, g.OddsAway)
	}
	_ = tw.Flush()
}
