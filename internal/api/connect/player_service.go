package connect

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/bandplayer/internal/app/notification"
	"github.com/osa030/bandplayer/internal/app/playback"
	"github.com/osa030/bandplayer/internal/app/session"
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	sessions *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(sessions *session.Manager) *PlayerService {
	return &PlayerService{sessions: sessions}
}

// NewPlayerServiceHandler builds an HTTP handler serving every procedure of
// the service. It returns the path prefix to mount it on.
func NewPlayerServiceHandler(svc *PlayerService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetCatalogProcedure, connect.NewUnaryHandler(GetCatalogProcedure, svc.GetCatalog, opts...))
	mux.Handle(OpenSessionProcedure, connect.NewUnaryHandler(OpenSessionProcedure, svc.OpenSession, opts...))
	mux.Handle(EndSessionProcedure, connect.NewUnaryHandler(EndSessionProcedure, svc.EndSession, opts...))
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, svc.GetState, opts...))
	mux.Handle(SelectTrackProcedure, connect.NewUnaryHandler(SelectTrackProcedure, svc.SelectTrack, opts...))
	mux.Handle(PlayAllProcedure, connect.NewUnaryHandler(PlayAllProcedure, svc.PlayAll, opts...))
	mux.Handle(TogglePlayPauseProcedure, connect.NewUnaryHandler(TogglePlayPauseProcedure, svc.TogglePlayPause, opts...))
	mux.Handle(SeekProcedure, connect.NewUnaryHandler(SeekProcedure, svc.Seek, opts...))
	mux.Handle(NextProcedure, connect.NewUnaryHandler(NextProcedure, svc.Next, opts...))
	mux.Handle(PreviousProcedure, connect.NewUnaryHandler(PreviousProcedure, svc.Previous, opts...))
	mux.Handle(SetVolumeProcedure, connect.NewUnaryHandler(SetVolumeProcedure, svc.SetVolume, opts...))
	mux.Handle(ClosePlayerProcedure, connect.NewUnaryHandler(ClosePlayerProcedure, svc.ClosePlayer, opts...))
	mux.Handle(WatchProcedure, connect.NewServerStreamHandler(WatchProcedure, svc.Watch, opts...))
	return "/" + ServiceName + "/", mux
}

// GetCatalog returns the album and its tracks.
func (s *PlayerService) GetCatalog(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return connect.NewResponse(encodeCatalog(s.sessions.Catalog())), nil
}

// OpenSession opens a visitor session with an empty player.
func (s *PlayerService) OpenSession(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	sess, err := s.sessions.Open()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(encodeState(sess.ID, sess.Player().Snapshot())), nil
}

// EndSession ends a visitor session and discards its state.
func (s *PlayerService) EndSession(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[emptypb.Empty], error) {
	id, err := stringField(req.Msg, FieldSessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.End(id); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// GetState returns the session's playback state.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.command(req, func(*playback.Simulator) error { return nil })
}

// SelectTrack makes a catalog track current and starts it from zero.
func (s *PlayerService) SelectTrack(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	trackID, err := stringField(req.Msg, FieldTrackID)
	if err != nil {
		return nil, err
	}
	return s.command(req, func(p *playback.Simulator) error {
		return p.SelectByID(trackID)
	})
}

// PlayAll starts the first catalog track.
func (s *PlayerService) PlayAll(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.command(req, func(p *playback.Simulator) error {
		p.PlayAll()
		return nil
	})
}

// TogglePlayPause pauses or resumes the current track.
func (s *PlayerService) TogglePlayPause(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.command(req, func(p *playback.Simulator) error {
		p.TogglePlayPause()
		return nil
	})
}

// Seek moves the elapsed counter of the current track.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	seconds, err := secondsField(req.Msg, FieldSeconds)
	if err != nil {
		return nil, err
	}
	return s.command(req, func(p *playback.Simulator) error {
		p.Seek(seconds)
		return nil
	})
}

// Next starts the following catalog track, wrapping to the first.
func (s *PlayerService) Next(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.command(req, func(p *playback.Simulator) error {
		p.Next()
		return nil
	})
}

// Previous starts the preceding catalog track, wrapping to the last.
func (s *PlayerService) Previous(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.command(req, func(p *playback.Simulator) error {
		p.Previous()
		return nil
	})
}

// SetVolume sets the volume, clamped to [0, 1].
func (s *PlayerService) SetVolume(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	volume, err := numberField(req.Msg, FieldVolume)
	if err != nil {
		return nil, err
	}
	return s.command(req, func(p *playback.Simulator) error {
		p.SetVolume(volume)
		return nil
	})
}

// ClosePlayer stops playback and hides the player.
func (s *PlayerService) ClosePlayer(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.command(req, func(p *playback.Simulator) error {
		p.Close()
		return nil
	})
}

// Watch streams the session's current state followed by every change until
// the client goes away or the session ends.
func (s *PlayerService) Watch(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
	stream *connect.ServerStream[structpb.Struct],
) error {
	id, err := stringField(req.Msg, FieldSessionID)
	if err != nil {
		return err
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return toConnectError(err)
	}

	notifManager := s.sessions.GetNotificationManager()
	adapter := &notificationStreamAdapter{stream: stream}

	// Initial state first, so it always precedes the changes
	initial := &notification.Notification{
		SessionID:  sess.ID,
		SequenceNo: notifManager.NextSequenceNo(),
		Type:       notification.TypeInitialState,
		Snapshot:   sess.Player().Snapshot(),
	}
	if err := adapter.Send(initial); err != nil {
		return err
	}

	subscriptionID := notifManager.Subscribe(sess.ID, adapter)
	zlog.Debug().Msgf("watch started: session_id=%s subscription_id=%s", sess.ID, subscriptionID)

	select {
	case <-ctx.Done():
	case <-sess.Done():
	}

	notifManager.Unsubscribe(subscriptionID)
	zlog.Debug().Msgf("watch ended: session_id=%s subscription_id=%s", sess.ID, subscriptionID)
	return nil
}

// command runs fn against the requested session's player and responds with
// the resulting state.
func (s *PlayerService) command(
	req *connect.Request[structpb.Struct],
	fn func(*playback.Simulator) error,
) (*connect.Response[structpb.Struct], error) {
	id, err := stringField(req.Msg, FieldSessionID)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := fn(sess.Player()); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(encodeState(sess.ID, sess.Player().Snapshot())), nil
}

// toConnectError maps domain errors to Connect status codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, session.ErrSessionNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, playback.ErrNotInCatalog):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, session.ErrTooManySessions):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, session.ErrManagerClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Sends are serialized because a timed-out send may still be in flight when
// the next notification arrives.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[structpb.Struct]
}

func (a *notificationStreamAdapter) Send(n *notification.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(encodeNotification(n))
}
