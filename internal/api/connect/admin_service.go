package connect

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/bandplayer/internal/app/session"
)

// AdminService implements the AdminService RPC.
type AdminService struct {
	sessions *session.Manager
}

// NewAdminService creates a new AdminService.
func NewAdminService(sessions *session.Manager) *AdminService {
	return &AdminService{sessions: sessions}
}

// NewAdminServiceHandler builds an HTTP handler serving the admin procedures.
// It returns the path prefix to mount it on.
func NewAdminServiceHandler(svc *AdminService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(AdminGetStatusProcedure, connect.NewUnaryHandler(AdminGetStatusProcedure, svc.GetStatus, opts...))
	mux.Handle(AdminListSessionsProcedure, connect.NewUnaryHandler(AdminListSessionsProcedure, svc.ListSessions, opts...))
	mux.Handle(AdminEndSessionProcedure, connect.NewUnaryHandler(AdminEndSessionProcedure, svc.EndSession, opts...))
	return "/" + AdminServiceName + "/", mux
}

// GetStatus returns server-wide counters.
func (s *AdminService) GetStatus(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	cat := s.sessions.Catalog()
	return connect.NewResponse(&structpb.Struct{Fields: map[string]*structpb.Value{
		"session_count":    structpb.NewNumberValue(float64(s.sessions.Count())),
		"subscriber_count": structpb.NewNumberValue(float64(s.sessions.GetNotificationManager().SubscriberCount())),
		"album":            structpb.NewStringValue(cat.Album()),
		"artist":           structpb.NewStringValue(cat.Artist()),
		"summary":          structpb.NewStringValue(cat.Summary()),
	}}), nil
}

// ListSessions lists all sessions, oldest first.
func (s *AdminService) ListSessions(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	infos := s.sessions.List()
	values := make([]*structpb.Value, len(infos))

	for i, info := range infos {
		state := encodeState(info.ID, info.Snapshot)
		state.Fields["opened_at"] = structpb.NewStringValue(info.OpenedAt.Format(time.RFC3339))
		state.Fields["last_seen_at"] = structpb.NewStringValue(info.LastSeenAt.Format(time.RFC3339))
		values[i] = structpb.NewStructValue(state)
	}

	return connect.NewResponse(&structpb.Struct{Fields: map[string]*structpb.Value{
		"sessions": structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}), nil
}

// EndSession ends a visitor's session.
func (s *AdminService) EndSession(
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
	zlog.Info().Msgf("session ended by admin: session_id=%s", id)
	return connect.NewResponse(&emptypb.Empty{}), nil
}
