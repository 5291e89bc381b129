package rpc

// Wire messages. The proto tag carries the field number and the field name
// used in the generated descriptor; see directory_sync.proto.

type ServerInfo struct {
	ID       string `proto:"1,id"`
	Label    string `proto:"2,label"`
	URL      string `proto:"3,url"`
	Username string `proto:"4,username"`
	Password string `proto:"5,password"`
}

type SyncResult struct {
	ServerID  string `proto:"1,server_id"`
	SourceID  string `proto:"2,source_id"`
	Succeeded bool   `proto:"3,succeeded"`
	Error     string `proto:"4,error"`
}

type Source struct {
	SourceID       string `proto:"1,source_id"`
	DisplayName    string `proto:"2,display_name"`
	ReadOnly       bool   `proto:"3,read_only"`
	SupportsGroups bool   `proto:"4,supports_groups"`
}

type RegisterServerRequest struct {
	Label    string `proto:"1,label"`
	URL      string `proto:"2,url"`
	Username string `proto:"3,username"`
	Password string `proto:"4,password"`
}

type RegisterServerResponse struct {
	Server  ServerInfo   `proto:"1,server"`
	Initial SyncResult   `proto:"2,initial_sync"`
	Servers []ServerInfo `proto:"3,servers"`
	Message string       `proto:"4,message"`
}

type DeleteServerRequest struct {
	ServerID string `proto:"1,server_id"`
}

// DeleteServerResponse is also returned when local cleanup failed after the
// server itself was deleted; CleanupFailed tells the two apart.
type DeleteServerResponse struct {
	Servers       []ServerInfo `proto:"1,servers"`
	CleanupFailed bool         `proto:"2,cleanup_failed"`
	Message       string       `proto:"3,message"`
}

type ListServersRequest struct{}

type ListServersResponse struct {
	Servers []ServerInfo `proto:"1,servers"`
}

// SyncRequest with an empty ServerID synchronizes every server.
type SyncRequest struct {
	ServerID string `proto:"1,server_id"`
}

type SyncResponse struct {
	Results      []SyncResult `proto:"1,results"`
	AllSucceeded bool         `proto:"2,all_succeeded"`
	Message      string       `proto:"3,message"`
}

type ListSourcesRequest struct{}

type ListSourcesResponse struct {
	Sources []Source `proto:"1,sources"`
}

type ResolveSourceRequest struct {
	SourceID string `proto:"1,source_id"`
}

type ResolveSourceResponse struct {
	Server ServerInfo `proto:"1,server"`
}

type AvailableRequest struct{}

type AvailableResponse struct {
	Available bool `proto:"1,available"`
}

type EnsureRegisteredRequest struct {
	Current []string `proto:"1,current"`
}

type EnsureRegisteredResponse struct {
	Sources []string `proto:"1,sources"`
}
