// Package main provides the player CLI, a terminal client for the player server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/bandplayer/internal/api/connect"
	"github.com/osa030/bandplayer/internal/domain/track"
)

var (
	app       = kingpin.New("bandplayer-cli", "Band site track player client")
	server    = app.Flag("server", "Server address").Default("http://localhost:8080").Envar("BANDPLAYER_SERVER").String()
	sessionID = app.Flag("session", "Session ID (from the open command)").Short('s').Envar("BANDPLAYER_SESSION").String()
	width     = app.Flag("width", "Now-playing line width").Default("48").Int()

	// catalog command
	catalogCmd = app.Command("catalog", "Show the album track list")

	// open command
	openCmd = app.Command("open", "Open a session and print its ID")

	// end command
	endCmd = app.Command("end", "End the session")

	// status command
	statusCmd = app.Command("status", "Show the now-playing state")

	// select command
	selectCmd     = app.Command("select", "Play a track from the start")
	selectTrackID = selectCmd.Arg("track-id", "Track ID").Required().String()

	// playall command
	playAllCmd = app.Command("playall", "Play the first track")

	// toggle command
	toggleCmd = app.Command("toggle", "Pause or resume")

	// seek command
	seekCmd = app.Command("seek", "Jump to a position")
	seekTo  = seekCmd.Arg("position", "Position as m:ss or seconds").Required().String()

	// next/prev commands
	nextCmd = app.Command("next", "Play the next track")
	prevCmd = app.Command("prev", "Play the previous track")

	// volume command
	volumeCmd   = app.Command("volume", "Set the volume")
	volumeLevel = volumeCmd.Arg("level", "Volume from 0.0 to 1.0").Required().Float64()

	// close command
	closeCmd = app.Command("close", "Stop and hide the player")

	// watch command
	watchCmd = app.Command("watch", "Follow the session's playback")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := apiconnect.NewPlayerClient(http.DefaultClient, *server)

	ctx := context.Background()

	// Execute command
	var err error
	switch command {
	case catalogCmd.FullCommand():
		err = showCatalog(ctx, client)
	case openCmd.FullCommand():
		err = openSession(ctx, client)
	case endCmd.FullCommand():
		err = client.EndSession(ctx, requireSession())
		if err == nil {
			fmt.Println("Session ended")
		}
	case statusCmd.FullCommand():
		err = printState(client.GetState(ctx, requireSession()))
	case selectCmd.FullCommand():
		err = printState(client.SelectTrack(ctx, requireSession(), *selectTrackID))
	case playAllCmd.FullCommand():
		err = printState(client.PlayAll(ctx, requireSession()))
	case toggleCmd.FullCommand():
		err = printState(client.TogglePlayPause(ctx, requireSession()))
	case seekCmd.FullCommand():
		var seconds int
		seconds, err = parsePosition(*seekTo)
		if err == nil {
			err = printState(client.Seek(ctx, requireSession(), seconds))
		}
	case nextCmd.FullCommand():
		err = printState(client.Next(ctx, requireSession()))
	case prevCmd.FullCommand():
		err = printState(client.Previous(ctx, requireSession()))
	case volumeCmd.FullCommand():
		err = printState(client.SetVolume(ctx, requireSession(), *volumeLevel))
	case closeCmd.FullCommand():
		err = printState(client.ClosePlayer(ctx, requireSession()))
	case watchCmd.FullCommand():
		err = watch(ctx, client, requireSession())
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// requireSession returns the session flag or exits.
func requireSession() string {
	if *sessionID == "" {
		fmt.Println("Error: --session (or BANDPLAYER_SESSION) is required; run 'open' first")
		os.Exit(1)
	}
	return *sessionID
}

func showCatalog(ctx context.Context, client *apiconnect.PlayerClient) error {
	cat, err := client.GetCatalog(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderCatalog(cat))
	return nil
}

func openSession(ctx context.Context, client *apiconnect.PlayerClient) error {
	state, err := client.OpenSession(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Session opened: %s\n", state.SessionID)
	fmt.Printf("  export BANDPLAYER_SESSION=%s\n", state.SessionID)
	return nil
}

func printState(state *apiconnect.StateView, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(renderState(state, *width))
	return nil
}

func watch(ctx context.Context, client *apiconnect.PlayerClient, id string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Watching session. Press Ctrl+C to exit.")

	err := client.Watch(ctx, id, func(n apiconnect.NotificationView) error {
		switch n.Type {
		case "session_ended":
			fmt.Printf("\n[Sequence: %d] Session ended\n", n.SequenceNo)
		case "change":
			// Progress ticks redraw in place; other events get a header
			if n.Event == "progress" {
				fmt.Printf("\r%s", progressLine(&n.State, *width))
				return nil
			}
			fmt.Printf("\n[Sequence: %d] %s\n%s\n", n.SequenceNo, n.Event, renderState(&n.State, *width))
		default:
			fmt.Printf("[Sequence: %d] %s\n%s\n", n.SequenceNo, n.Type, renderState(&n.State, *width))
		}
		return nil
	})
	if ctx.Err() != nil {
		fmt.Println("\nStopped watching")
		return nil
	}
	return err
}

// parsePosition accepts "m:ss" or whole seconds.
func parsePosition(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return track.ParseDuration(s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return n, nil
}
