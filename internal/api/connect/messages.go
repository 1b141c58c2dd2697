package connect

import (
	"math"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/bandplayer/internal/app/notification"
	"github.com/osa030/bandplayer/internal/app/playback"
	"github.com/osa030/bandplayer/internal/domain/catalog"
	"github.com/osa030/bandplayer/internal/domain/track"
)

// TrackView is the wire form of a track.
type TrackView struct {
	ID              string
	Number          int
	Title           string
	Duration        string
	DurationSeconds int
}

// StateView is the wire form of a session's playback state.
type StateView struct {
	SessionID      string
	Track          *TrackView // nil when the player is hidden
	State          string
	Playing        bool
	ElapsedSeconds int
	Elapsed        string
	Duration       string
	Volume         float64
	Progress       float64
}

// CatalogView is the wire form of the catalog.
type CatalogView struct {
	Album        string
	Artist       string
	Summary      string
	TotalSeconds int
	Tracks       []TrackView
}

// NotificationView is the wire form of a Watch notification.
type NotificationView struct {
	SessionID  string
	SequenceNo uint64
	Type       string
	Event      string // Set for "change" notifications
	State      StateView
}

func trackValue(t *track.Track) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":               structpb.NewStringValue(t.ID),
		"number":           structpb.NewNumberValue(float64(t.Number)),
		"title":            structpb.NewStringValue(t.Title),
		"duration":         structpb.NewStringValue(t.Duration),
		"duration_seconds": structpb.NewNumberValue(float64(t.DurationSeconds)),
	}})
}

func encodeState(sessionID string, snap playback.Snapshot) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"session_id":      structpb.NewStringValue(sessionID),
		"state":           structpb.NewStringValue(snap.State.String()),
		"is_playing":      structpb.NewBoolValue(snap.IsPlaying()),
		"elapsed_seconds": structpb.NewNumberValue(float64(snap.Elapsed)),
		"elapsed":         structpb.NewStringValue(snap.ElapsedText()),
		"duration":        structpb.NewStringValue(snap.DurationText()),
		"volume":          structpb.NewNumberValue(snap.Volume),
		"progress":        structpb.NewNumberValue(snap.ProgressFraction()),
	}
	if snap.Track != nil {
		fields["track"] = trackValue(snap.Track)
	}
	return &structpb.Struct{Fields: fields}
}

func encodeCatalog(cat *catalog.Catalog) *structpb.Struct {
	tracks := cat.Tracks()
	values := make([]*structpb.Value, len(tracks))
	for i := range tracks {
		values[i] = trackValue(&tracks[i])
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"album":         structpb.NewStringValue(cat.Album()),
		"artist":        structpb.NewStringValue(cat.Artist()),
		"summary":       structpb.NewStringValue(cat.Summary()),
		"total_seconds": structpb.NewNumberValue(float64(cat.TotalSeconds())),
		"tracks":        structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

func encodeNotification(n *notification.Notification) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"session_id":  structpb.NewStringValue(n.SessionID),
		"sequence_no": structpb.NewNumberValue(float64(n.SequenceNo)),
		"type":        structpb.NewStringValue(n.Type.String()),
	}
	switch n.Type {
	case notification.TypeChange:
		fields["event"] = structpb.NewStringValue(n.Event.String())
		fields["state"] = structpb.NewStructValue(encodeState(n.SessionID, n.Snapshot))
	case notification.TypeInitialState:
		fields["state"] = structpb.NewStructValue(encodeState(n.SessionID, n.Snapshot))
	}
	return &structpb.Struct{Fields: fields}
}

// DecodeTrack reads a track from its wire form.
func DecodeTrack(s *structpb.Struct) TrackView {
	f := s.GetFields()
	return TrackView{
		ID:              f["id"].GetStringValue(),
		Number:          int(f["number"].GetNumberValue()),
		Title:           f["title"].GetStringValue(),
		Duration:        f["duration"].GetStringValue(),
		DurationSeconds: int(f["duration_seconds"].GetNumberValue()),
	}
}

// DecodeState reads a playback state from its wire form.
func DecodeState(s *structpb.Struct) StateView {
	f := s.GetFields()
	v := StateView{
		SessionID:      f["session_id"].GetStringValue(),
		State:          f["state"].GetStringValue(),
		Playing:        f["is_playing"].GetBoolValue(),
		ElapsedSeconds: int(f["elapsed_seconds"].GetNumberValue()),
		Elapsed:        f["elapsed"].GetStringValue(),
		Duration:       f["duration"].GetStringValue(),
		Volume:         f["volume"].GetNumberValue(),
		Progress:       f["progress"].GetNumberValue(),
	}
	if t := f["track"].GetStructValue(); t != nil {
		tv := DecodeTrack(t)
		v.Track = &tv
	}
	return v
}

// DecodeCatalog reads the catalog from its wire form.
func DecodeCatalog(s *structpb.Struct) CatalogView {
	f := s.GetFields()
	v := CatalogView{
		Album:        f["album"].GetStringValue(),
		Artist:       f["artist"].GetStringValue(),
		Summary:      f["summary"].GetStringValue(),
		TotalSeconds: int(f["total_seconds"].GetNumberValue()),
	}
	for _, t := range f["tracks"].GetListValue().GetValues() {
		v.Tracks = append(v.Tracks, DecodeTrack(t.GetStructValue()))
	}
	return v
}

// DecodeNotification reads a Watch notification from its wire form.
func DecodeNotification(s *structpb.Struct) NotificationView {
	f := s.GetFields()
	return NotificationView{
		SessionID:  f["session_id"].GetStringValue(),
		SequenceNo: uint64(f["sequence_no"].GetNumberValue()),
		Type:       f["type"].GetStringValue(),
		Event:      f["event"].GetStringValue(),
		State:      DecodeState(f["state"].GetStructValue()),
	}
}

// stringField returns a required, non-empty string field.
func stringField(msg *structpb.Struct, name string) (string, error) {
	v, ok := msg.GetFields()[name]
	if !ok {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.Newf("%s is required", name))
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || sv.StringValue == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.Newf("%s must be a non-empty string", name))
	}
	return sv.StringValue, nil
}

// numberField returns a required numeric field.
func numberField(msg *structpb.Struct, name string) (float64, error) {
	v, ok := msg.GetFields()[name]
	if !ok {
		return 0, connect.NewError(connect.CodeInvalidArgument, errors.Newf("%s is required", name))
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || math.IsNaN(nv.NumberValue) {
		return 0, connect.NewError(connect.CodeInvalidArgument, errors.Newf("%s must be a number", name))
	}
	return nv.NumberValue, nil
}

// secondsField returns a whole-second field clamped to the int32 range.
func secondsField(msg *structpb.Struct, name string) (int, error) {
	n, err := numberField(msg, name)
	if err != nil {
		return 0, err
	}
	n = math.Max(math.MinInt32, math.Min(math.MaxInt32, n))
	return int(n), nil
}
