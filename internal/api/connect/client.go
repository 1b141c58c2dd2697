package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// PlayerClient is a client for the PlayerService.
type PlayerClient struct {
	getCatalog  *connect.Client[emptypb.Empty, structpb.Struct]
	openSession *connect.Client[emptypb.Empty, structpb.Struct]
	endSession  *connect.Client[structpb.Struct, emptypb.Empty]
	commands    map[string]*connect.Client[structpb.Struct, structpb.Struct]
	watch       *connect.Client[structpb.Struct, structpb.Struct]
}

// NewPlayerClient creates a client for the service at baseURL
// (e.g. "http://localhost:8080").
func NewPlayerClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlayerClient {
	baseURL = strings.TrimRight(baseURL, "/")

	commands := make(map[string]*connect.Client[structpb.Struct, structpb.Struct])
	for _, procedure := range []string{
		GetStateProcedure,
		SelectTrackProcedure,
		PlayAllProcedure,
		TogglePlayPauseProcedure,
		SeekProcedure,
		NextProcedure,
		PreviousProcedure,
		SetVolumeProcedure,
		ClosePlayerProcedure,
	} {
		commands[procedure] = connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+procedure, opts...)
	}

	return &PlayerClient{
		getCatalog:  connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+GetCatalogProcedure, opts...),
		openSession: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+OpenSessionProcedure, opts...),
		endSession:  connect.NewClient[structpb.Struct, emptypb.Empty](httpClient, baseURL+EndSessionProcedure, opts...),
		commands:    commands,
		watch:       connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+WatchProcedure, opts...),
	}
}

// GetCatalog returns the album and its tracks.
func (c *PlayerClient) GetCatalog(ctx context.Context) (*CatalogView, error) {
	resp, err := c.getCatalog.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, err
	}
	v := DecodeCatalog(resp.Msg)
	return &v, nil
}

// OpenSession opens a session and returns its initial state.
func (c *PlayerClient) OpenSession(ctx context.Context) (*StateView, error) {
	resp, err := c.openSession.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, err
	}
	v := DecodeState(resp.Msg)
	return &v, nil
}

// EndSession ends a session.
func (c *PlayerClient) EndSession(ctx context.Context, sessionID string) error {
	_, err := c.endSession.CallUnary(ctx, connect.NewRequest(sessionRequest(sessionID, nil)))
	return err
}

// GetState returns a session's state.
func (c *PlayerClient) GetState(ctx context.Context, sessionID string) (*StateView, error) {
	return c.call(ctx, GetStateProcedure, sessionID, nil)
}

// SelectTrack selects a catalog track.
func (c *PlayerClient) SelectTrack(ctx context.Context, sessionID, trackID string) (*StateView, error) {
	return c.call(ctx, SelectTrackProcedure, sessionID, map[string]*structpb.Value{
		FieldTrackID: structpb.NewStringValue(trackID),
	})
}

// PlayAll selects the first catalog track.
func (c *PlayerClient) PlayAll(ctx context.Context, sessionID string) (*StateView, error) {
	return c.call(ctx, PlayAllProcedure, sessionID, nil)
}

// TogglePlayPause pauses or resumes playback.
func (c *PlayerClient) TogglePlayPause(ctx context.Context, sessionID string) (*StateView, error) {
	return c.call(ctx, TogglePlayPauseProcedure, sessionID, nil)
}

// Seek moves to the given second of the current track.
func (c *PlayerClient) Seek(ctx context.Context, sessionID string, seconds int) (*StateView, error) {
	return c.call(ctx, SeekProcedure, sessionID, map[string]*structpb.Value{
		FieldSeconds: structpb.NewNumberValue(float64(seconds)),
	})
}

// Next starts the next track.
func (c *PlayerClient) Next(ctx context.Context, sessionID string) (*StateView, error) {
	return c.call(ctx, NextProcedure, sessionID, nil)
}

// Previous starts the previous track.
func (c *PlayerClient) Previous(ctx context.Context, sessionID string) (*StateView, error) {
	return c.call(ctx, PreviousProcedure, sessionID, nil)
}

// SetVolume sets the volume.
func (c *PlayerClient) SetVolume(ctx context.Context, sessionID string, volume float64) (*StateView, error) {
	return c.call(ctx, SetVolumeProcedure, sessionID, map[string]*structpb.Value{
		FieldVolume: structpb.NewNumberValue(volume),
	})
}

// ClosePlayer closes the player.
func (c *PlayerClient) ClosePlayer(ctx context.Context, sessionID string) (*StateView, error) {
	return c.call(ctx, ClosePlayerProcedure, sessionID, nil)
}

// Watch receives a session's notifications and passes each to fn until the
// stream ends, ctx is cancelled, or fn returns an error.
func (c *PlayerClient) Watch(ctx context.Context, sessionID string, fn func(NotificationView) error) error {
	stream, err := c.watch.CallServerStream(ctx, connect.NewRequest(sessionRequest(sessionID, nil)))
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Receive() {
		if err := fn(DecodeNotification(stream.Msg())); err != nil {
			return err
		}
	}
	return stream.Err()
}

func (c *PlayerClient) call(
	ctx context.Context,
	procedure, sessionID string,
	fields map[string]*structpb.Value,
) (*StateView, error) {
	resp, err := c.commands[procedure].CallUnary(ctx, connect.NewRequest(sessionRequest(sessionID, fields)))
	if err != nil {
		return nil, err
	}
	v := DecodeState(resp.Msg)
	return &v, nil
}

func sessionRequest(sessionID string, fields map[string]*structpb.Value) *structpb.Struct {
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSessionID: structpb.NewStringValue(sessionID),
	}}
	for k, v := range fields {
		msg.Fields[k] = v
	}
	return msg
}

// SessionView is the wire form of a session as listed by the admin service.
type SessionView struct {
	StateView
	OpenedAt   string
	LastSeenAt string
}

// StatusView is the wire form of the admin status.
type StatusView struct {
	SessionCount    int
	SubscriberCount int
	Album           string
	Artist          string
	Summary         string
}

// AdminClient is a client for the AdminService. Every call carries the
// admin token.
type AdminClient struct {
	getStatus    *connect.Client[emptypb.Empty, structpb.Struct]
	listSessions *connect.Client[emptypb.Empty, structpb.Struct]
	endSession   *connect.Client[structpb.Struct, emptypb.Empty]
}

// NewAdminClient creates an admin client for the service at baseURL.
func NewAdminClient(httpClient connect.HTTPClient, baseURL, adminToken string, opts ...connect.ClientOption) *AdminClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithInterceptors(NewAdminTokenClientInterceptor(adminToken)))

	return &AdminClient{
		getStatus:    connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+AdminGetStatusProcedure, opts...),
		listSessions: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+AdminListSessionsProcedure, opts...),
		endSession:   connect.NewClient[structpb.Struct, emptypb.Empty](httpClient, baseURL+AdminEndSessionProcedure, opts...),
	}
}

// GetStatus returns server-wide counters.
func (c *AdminClient) GetStatus(ctx context.Context) (*StatusView, error) {
	resp, err := c.getStatus.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, err
	}
	f := resp.Msg.GetFields()
	return &StatusView{
		SessionCount:    int(f["session_count"].GetNumberValue()),
		SubscriberCount: int(f["subscriber_count"].GetNumberValue()),
		Album:           f["album"].GetStringValue(),
		Artist:          f["artist"].GetStringValue(),
		Summary:         f["summary"].GetStringValue(),
	}, nil
}

// ListSessions lists all sessions, oldest first.
func (c *AdminClient) ListSessions(ctx context.Context) ([]SessionView, error) {
	resp, err := c.listSessions.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, err
	}

	var sessions []SessionView
	for _, v := range resp.Msg.GetFields()["sessions"].GetListValue().GetValues() {
		s := v.GetStructValue()
		sessions = append(sessions, SessionView{
			StateView:  DecodeState(s),
			OpenedAt:   s.GetFields()["opened_at"].GetStringValue(),
			LastSeenAt: s.GetFields()["last_seen_at"].GetStringValue(),
		})
	}
	return sessions, nil
}

// EndSession ends a visitor's session.
func (c *AdminClient) EndSession(ctx context.Context, sessionID string) error {
	_, err := c.endSession.CallUnary(ctx, connect.NewRequest(sessionRequest(sessionID, nil)))
	return err
}
