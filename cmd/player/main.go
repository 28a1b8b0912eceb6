// cmd/player/main.go
//
// Reference device runtime: for each configured screen it runs a playback
// session against the fleet API and reports heartbeats so the fleet health
// view can tell the screen is alive.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"signage/internal/config"
	"signage/internal/heartbeat"
	"signage/internal/player"
	"signage/internal/services"
)

func main() {
	cfg := config.Load()

	baseURL := getEnv("SIGNAGE_API_URL", "http://localhost:"+cfg.Port)
	email := os.Getenv("SIGNAGE_DEVICE_EMAIL")
	password := os.Getenv("SIGNAGE_DEVICE_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SIGNAGE_DEVICE_EMAIL and SIGNAGE_DEVICE_PASSWORD are required")
	}

	screenIDs := splitIDs(os.Getenv("SIGNAGE_SCREEN_IDS"))
	if len(screenIDs) == 0 {
		log.Fatal("SIGNAGE_SCREEN_IDS is required (comma-separated screen ids)")
	}

	client := services.NewFleetClient(baseURL, email, password)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, screenID := range screenIDs {
		surface := player.NewConsoleSurface(log.New(os.Stdout, "["+screenID+"] ", log.LstdFlags))
		session := player.NewSession(player.Config{
			ScreenID:        screenID,
			RefreshInterval: cfg.RefreshInterval,
			WatchdogCeiling: cfg.WatchdogCeiling,
			OnTransition: func(from, to player.State, index int) {
				log.Printf("screen %s: %s -> %s (item %d)", screenID, from, to, index)
			},
		}, client, surface)
		reporter := heartbeat.NewReporter(screenID, client, cfg.HeartbeatInterval)

		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := session.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("screen %s: session stopped: %v", screenID, err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := reporter.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("screen %s: heartbeat stopped: %v", screenID, err)
			}
		}()
	}

	log.Printf("Player running for %d screen(s) against %s", len(screenIDs), baseURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down player...")

	cancel()
	wg.Wait()
	log.Println("Player exiting")
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
