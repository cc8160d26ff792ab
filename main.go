package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"zoneboard/internal/auth"
	"zoneboard/internal/config"
	"zoneboard/internal/publish"
	"zoneboard/internal/score"
	"zoneboard/internal/server"
	"zoneboard/internal/service"
	"zoneboard/internal/store"
	"zoneboard/internal/strava"
)

func main() {
	// A .env file is a convenience for local runs; deployments set real
	// environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "serve":
		err = runServe(cfg)
	case "rebuild":
		err = runRebuild(cfg)
	case "backfill":
		err = runBackfill(cfg)
	case "add-athlete":
		err = runAddAthlete(cfg, args[1:])
	case "remove-athlete":
		err = runRemoveAthlete(cfg, args[1:])
	case "list-athletes":
		err = runListAthletes(cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: zoneboard <command>

commands:
  serve           run the webhook server with scheduled backfills
  rebuild         recompute and publish the leaderboard once
  backfill        fetch recent activities for all athletes, then rebuild
  add-athlete     register an athlete with their HR profile and tokens
  remove-athlete  delete an athlete and all their records
  list-athletes   print the registered athletes`)
}

func normalizer(cfg *config.Config) score.Normalizer {
	return score.Normalizer{
		DailyCap:        cfg.DailyCap,
		WeeklyCap:       cfg.WeeklyCap,
		PTOBudget:       cfg.PTOBudget,
		SeasonStartWeek: cfg.SeasonStartWeek,
	}
}

// sink picks the publish target: GitHub when its credentials are
// configured, otherwise a local file.
func sink(cfg *config.Config) publish.Sink {
	if err := cfg.RequireGitHub(); err == nil {
		return &publish.GitHub{
			Token:          cfg.GitHubToken,
			RepoOwner:      cfg.GitHubRepoOwner,
			RepoName:       cfg.GitHubRepoName,
			FilePath:       cfg.GitHubFilePath,
			CommitterName:  cfg.GitHubCommitterName,
			CommitterEmail: cfg.GitHubCommitterEmail,
		}
	}
	log.Printf("GitHub publishing not configured, writing to %s", cfg.OutputPath)
	return &publish.File{Path: cfg.OutputPath}
}

func newRebuilder(cfg *config.Config, st *store.Store) *service.Rebuilder {
	return service.NewRebuilder(st, sink(cfg), normalizer(cfg), cfg.MinHRPolicy, cfg.Location())
}

func newIngestor(cfg *config.Config, st *store.Store) (*service.Ingestor, error) {
	if err := cfg.RequireStrava(); err != nil {
		return nil, err
	}
	oauthCfg := auth.NewOAuthConfig(cfg.StravaClientID, cfg.StravaClientSecret)
	sources := service.NewStravaSources(oauthCfg, st, strava.NewRateLimiter())
	return service.NewIngestor(st, sources, cfg.MinHRPolicy), nil
}

func runServe(cfg *config.Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ing, err := newIngestor(cfg, st)
	if err != nil {
		return err
	}
	reb := newRebuilder(cfg, st)

	queue := service.NewQueue(128, ing, reb)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go queue.Run(ctx)

	// The nightly backfill catches deliveries lost to downtime and
	// refreshes the published document even on quiet days.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.BackfillSchedule, func() {
		if _, err := ing.Backfill(ctx, cfg.BackfillWindow); err != nil {
			log.Printf("scheduled backfill: %v", err)
			return
		}
		if _, err := reb.Rebuild(ctx); err != nil {
			log.Printf("scheduled rebuild: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling backfill: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(cfg.VerifyToken, queue).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runRebuild(cfg *config.Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := newRebuilder(cfg, st).Rebuild(context.Background())
	if err != nil {
		return err
	}
	for _, item := range report.Skipped {
		log.Printf("skipped: athlete=%s activity=%d reason=%s detail=%s",
			item.Athlete, item.Activity, item.Reason, item.Detail)
	}
	log.Printf("published %d of %d athletes", report.Entries, report.Athletes)
	return nil
}

func runBackfill(cfg *config.Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ing, err := newIngestor(cfg, st)
	if err != nil {
		return err
	}

	ctx := context.Background()
	n, err := ing.Backfill(ctx, cfg.BackfillWindow)
	if err != nil {
		return err
	}
	log.Printf("backfilled %d activities", n)

	_, err = newRebuilder(cfg, st).Rebuild(ctx)
	return err
}

func runAddAthlete(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("add-athlete", flag.ExitOnError)
	id := fs.Int64("id", 0, "Strava athlete ID")
	name := fs.String("name", "", "display name")
	resting := fs.Int("resting-hr", 0, "resting heart rate")
	max := fs.Int("max-hr", 0, "maximum heart rate")
	accessToken := fs.String("access-token", "", "Strava access token")
	refreshToken := fs.String("refresh-token", "", "Strava refresh token")
	expires := fs.Int64("expires-at", 0, "access token expiry as a unix timestamp")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == 0 || *name == "" {
		return errors.New("add-athlete requires -id and -name")
	}
	if *resting <= 0 || *max <= *resting {
		return errors.New("add-athlete requires -resting-hr and -max-hr with max above resting")
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	athlete := &store.Athlete{
		ID:           *id,
		Name:         *name,
		RestingHR:    *resting,
		MaxHR:        *max,
		AccessToken:  *accessToken,
		RefreshToken: *refreshToken,
		ExpiresAt:    time.Unix(*expires, 0),
	}
	if err := st.UpsertAthlete(athlete); err != nil {
		return err
	}
	log.Printf("saved athlete %d (%s)", athlete.ID, athlete.Name)
	return nil
}

func runRemoveAthlete(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("remove-athlete", flag.ExitOnError)
	id := fs.Int64("id", 0, "Strava athlete ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("remove-athlete requires -id")
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteAthleteRecords(*id); err != nil {
		return err
	}
	if err := st.DeleteAthlete(*id); err != nil {
		return err
	}
	log.Printf("removed athlete %d and their records", *id)
	return nil
}

func runListAthletes(cfg *config.Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	athletes, err := st.ListAthletes()
	if err != nil {
		return err
	}
	for _, a := range athletes {
		fmt.Printf("%d\t%s\tresting=%d max=%d\n", a.ID, a.Name, a.RestingHR, a.MaxHR)
	}
	return nil
}
