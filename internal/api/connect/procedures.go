// Package connect provides the Connect RPC player service and its client.
//
// Messages are google.protobuf.Struct and google.protobuf.Empty well-known
// types, so the service is callable with any Connect, gRPC, or gRPC-Web
// client without generated stubs.
package connect

const (
	// ServiceName is the fully-qualified name of the player service.
	ServiceName = "bandplayer.v1.PlayerService"

	// AdminServiceName is the fully-qualified name of the admin service.
	AdminServiceName = "bandplayer.v1.AdminService"
)

// Procedure paths of the player service.
const (
	GetCatalogProcedure      = "/" + ServiceName + "/GetCatalog"
	OpenSessionProcedure     = "/" + ServiceName + "/OpenSession"
	EndSessionProcedure      = "/" + ServiceName + "/EndSession"
	GetStateProcedure        = "/" + ServiceName + "/GetState"
	SelectTrackProcedure     = "/" + ServiceName + "/SelectTrack"
	PlayAllProcedure         = "/" + ServiceName + "/PlayAll"
	TogglePlayPauseProcedure = "/" + ServiceName + "/TogglePlayPause"
	SeekProcedure            = "/" + ServiceName + "/Seek"
	NextProcedure            = "/" + ServiceName + "/Next"
	PreviousProcedure        = "/" + ServiceName + "/Previous"
	SetVolumeProcedure       = "/" + ServiceName + "/SetVolume"
	ClosePlayerProcedure     = "/" + ServiceName + "/ClosePlayer"
	WatchProcedure           = "/" + ServiceName + "/Watch"
)

// Procedure paths of the admin service.
const (
	AdminGetStatusProcedure    = "/" + AdminServiceName + "/GetStatus"
	AdminListSessionsProcedure = "/" + AdminServiceName + "/ListSessions"
	AdminEndSessionProcedure   = "/" + AdminServiceName + "/EndSession"
)

// Request field names.
const (
	FieldSessionID = "session_id"
	FieldTrackID   = "track_id"
	FieldSeconds   = "seconds"
	FieldVolume    = "volume"
)
