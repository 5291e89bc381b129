package models

// SyncOutcome is the result of one synchronization pass for one server.
// Err is set if and only if Succeeded is false.
type SyncOutcome struct {
	ServerID  string
	SourceID  string
	Succeeded bool
	Err       error
}

// DirectorySource is a registered server as seen by the host's directory
// listing. ReadOnly and Groups are reported by the local store.
type DirectorySource struct {
	SourceID    string
	DisplayName string
	ReadOnly    bool
	Groups      bool
}
