// Command client is a field-test tool that drives a full client-side check-in
// attempt against a running server: bootstrap from the ledger, geofence and
// cooldown evaluation, submission, and session-cache update.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/upsrj/checkin-system/internal/client"
	"github.com/upsrj/checkin-system/internal/client/session"
	"github.com/upsrj/checkin-system/internal/core/geo"
	"github.com/upsrj/checkin-system/pkg/logger"
)

func main() {
	var (
		server    = flag.String("server", "http://localhost:8080", "check-in server base URL")
		user      = flag.String("user", "", "student email (required)")
		lat       = flag.Float64("lat", 20.552893815932485, "device latitude")
		lng       = flag.Float64("lng", -100.41876323329602, "device longitude")
		targetLat = flag.Float64("target-lat", 20.552893815932485, "campus latitude")
		targetLng = flag.Float64("target-lng", -100.41876323329602, "campus longitude")
		accept    = flag.Float64("accept-km", 0.25, "accept radius in kilometers")
		reject    = flag.Float64("reject-km", 0.5, "reject radius in kilometers")
		cooldown  = flag.Duration("cooldown", time.Minute, "minimum interval between attempts")
		cacheDir  = flag.String("cache-dir", "", "session cache directory (empty disables caching)")
		deny      = flag.Bool("deny-location", false, "simulate a denied location permission")
		logLevel  = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: client -user <email> [flags]")
		os.Exit(2)
	}

	log := logger.Init(logger.Options{Level: *logLevel, Pretty: true})
	ctx := context.Background()

	var store client.SessionStore
	if *cacheDir != "" {
		cache, err := session.Open(*cacheDir, *user)
		if err != nil {
			log.Fatal().Err(err).Msg("session cache open failed")
		}
		defer cache.Close()
		store = cache
	}

	ledger := client.NewLedgerClient(*server, 0)
	state := client.Bootstrap(ctx, ledger, store, *user, log)

	provider := staticProvider{
		pos:    client.Position{Point: geo.Point{Lat: *lat, Lng: *lng}},
		denied: *deny,
	}

	validator := client.NewValidator(client.ValidatorConfig{
		User:           *user,
		Target:         geo.Point{Lat: *targetLat, Lng: *targetLng},
		AcceptRadiusKm: *accept,
		RejectRadiusKm: *reject,
		Cooldown:       *cooldown,
	}, provider, ledger, store, log)

	outcome, _ := validator.Attempt(ctx, state)

	switch outcome.State {
	case client.StateAccepted:
		fmt.Println(outcome.Message)
	default:
		if outcome.Reason == client.ReasonCooldownActive {
			fmt.Printf("you can check in again in %d seconds\n", outcome.SecondsRemaining)
		} else {
			fmt.Println(outcome.Message)
		}
		os.Exit(1)
	}
}

// staticProvider reports a fixed position, standing in for the device GPS.
type staticProvider struct {
	pos    client.Position
	denied bool
}

func (p staticProvider) CurrentPosition(_ context.Context) (client.Position, error) {
	if p.denied {
		return client.Position{}, client.ErrPermissionDenied
	}
	return p.pos, nil
}
