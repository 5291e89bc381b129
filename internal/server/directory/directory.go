// Package directory holds the contracts between the sync orchestrator and
// its two collaborators: the remote protocol client and the local store.
package directory

import (
	"context"
	"strings"

	"github.com/graviox/roundcube-carddav/internal/common"
)

// SourcePrefix is prepended to a server id to form its source id.
const SourcePrefix = "carddav_addressbook"

// SourceID maps a server id to the id the host uses for its directory source.
func SourceID(serverID string) string {
	return SourcePrefix + serverID
}

// ServerID is the inverse of SourceID. It reports false for ids without the
// prefix or with nothing after it.
func ServerID(sourceID string) (string, bool) {
	id, ok := strings.CutPrefix(sourceID, SourcePrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Credentials are handed to the protocol client in plaintext. The holder
// must call Wipe once the client is done with them.
type Credentials struct {
	URL      string
	Username string
	Password []byte
}

// Wipe zeroes the password buffer.
func (c *Credentials) Wipe() {
	common.WipeByteArray(c.Password)
	c.Password = nil
}

// Object is one address object as fetched from the remote server.
type Object struct {
	Href        string
	ETag        string
	UID         string
	DisplayName string
	Email       string
	VCard       []byte
}

// Sink receives the result of a synchronization pass for one source.
type Sink interface {
	// Known returns href → etag for everything currently mirrored.
	Known(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, obj Object) error
	Remove(ctx context.Context, href string) error
}

// Client talks to one remote directory server.
type Client interface {
	// CheckConnection verifies that the endpoint is reachable and accepts
	// the credentials.
	CheckConnection(ctx context.Context) error
	// Synchronize runs one full pass and applies the differences to sink.
	Synchronize(ctx context.Context, sink Sink) error
}

// Factory builds a Client for a credential set. Implementations must copy
// whatever they keep from creds, since the caller wipes the password.
type Factory interface {
	NewClient(creds Credentials) (Client, error)
}

// Capabilities are reported by the local store and passed through to the
// host unchanged.
type Capabilities struct {
	ReadOnly bool
	Groups   bool
}

// Store is the local mirror of every synchronized source.
type Store interface {
	Sink(ownerID, sourceID string) Sink
	Capabilities(sourceID string) Capabilities
	// DropSource removes every mirrored object of a source.
	DropSource(ctx context.Context, ownerID, sourceID string) error
}
