// Package models defines server-side data models persisted in the database
// or passed between the registry, the orchestrator and the gRPC layer.
package models

import (
	"time"

	"github.com/graviox/roundcube-carddav/internal/common"
)

// ServerConfig is one registered remote directory server.
// Secret holds the encrypted password; it is never decrypted outside the
// sync path.
type ServerConfig struct {
	ID        string
	OwnerID   string
	Label     string
	URL       string
	Username  string
	Secret    []byte
	CreatedAt time.Time
}

// ServerView is the display form of a ServerConfig. The password is always
// rendered as a fixed mask.
type ServerView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// View returns the masked display form of s.
func (s *ServerConfig) View() ServerView {
	return ServerView{
		ID:       s.ID,
		Label:    s.Label,
		URL:      s.URL,
		Username: s.Username,
		Password: common.SecretMask,
	}
}

// Views masks a whole listing, preserving order.
func Views(servers []ServerConfig) []ServerView {
	views := make([]ServerView, 0, len(servers))
	for i := range servers {
		views = append(views, servers[i].View())
	}
	return views
}
