// Package main provides the admin CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/bandplayer/internal/api/connect"
)

var (
	app    = kingpin.New("bandplayer-admincli", "Band site track player admin client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()

	// status command
	statusCmd = app.Command("status", "Get server status")

	// list-sessions command
	listCmd = app.Command("list-sessions", "List all visitor sessions").Alias("list")

	// end command
	endCmd       = app.Command("end", "End a visitor session")
	endSessionID = endCmd.Arg("session-id", "Session ID (UUID)").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Check admin token
	if *token == "" {
		fmt.Println("Error: admin token is required (use --token or ADMIN_TOKEN env)")
		os.Exit(1)
	}

	// Create client
	client := apiconnect.NewAdminClient(http.DefaultClient, *server, *token)

	ctx := context.Background()

	// Execute command
	switch command {
	case statusCmd.FullCommand():
		getStatus(ctx, client)
	case listCmd.FullCommand():
		listSessions(ctx, client)
	case endCmd.FullCommand():
		endSession(ctx, client, *endSessionID)
	}
}

func getStatus(ctx context.Context, client *apiconnect.AdminClient) {
	status, err := client.GetStatus(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Server Status:")
	fmt.Printf("  Catalog: %s - %s (%s)\n", status.Artist, status.Album, status.Summary)
	fmt.Printf("  Sessions: %d\n", status.SessionCount)
	fmt.Printf("  Watchers: %d\n", status.SubscriberCount)
}

func listSessions(ctx context.Context, client *apiconnect.AdminClient) {
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions")
		return
	}

	fmt.Printf("Sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		fmt.Printf("  %s\n", s.SessionID)
		fmt.Printf("    Opened: %s  Last seen: %s\n", s.OpenedAt, s.LastSeenAt)
		if s.Track != nil {
			fmt.Printf("    %s %s  %s / %s  vol %.0f%%\n",
				s.State, s.Track.Title, s.Elapsed, s.Duration, s.Volume*100)
		} else {
			fmt.Printf("    %s\n", s.State)
		}
	}
}

func endSession(ctx context.Context, client *apiconnect.AdminClient, sessionID string) {
	if err := client.EndSession(ctx, sessionID); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Session ended")
}
