// Package carddav implements the remote directory client on top of
// go-webdav's CardDAV client.
package carddav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/emersion/go-vcard"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/carddav"
	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/directory"
)

var (
	ErrCredentialsRejected = errors.New("credentials rejected")
	ErrNoAddressBook       = errors.New("no address book found")
)

var encodeCard = func(w io.Writer, c vcard.Card) error {
	return vcard.NewEncoder(w).Encode(c)
}

// davClient is the part of *carddav.Client used here.
type davClient interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindAddressBookHomeSet(ctx context.Context, principal string) (string, error)
	FindAddressBooks(ctx context.Context, addressBookHomeSet string) ([]carddav.AddressBook, error)
	QueryAddressBook(ctx context.Context, addressBook string, query *carddav.AddressBookQuery) ([]carddav.AddressObject, error)
}

// Factory builds CardDAV clients sharing one *http.Client.
type Factory struct {
	httpClient *http.Client
	logger     logging.Logger
}

func NewFactory(httpClient *http.Client, logger logging.Logger) *Factory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Factory{httpClient: httpClient, logger: logger.With("module", "carddav")}
}

// NewClient returns a client for creds. The password is copied.
func (f *Factory) NewClient(creds directory.Credentials) (directory.Client, error) {
	u, err := url.Parse(creds.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	rec := &statusRecorder{next: f.httpClient}
	dav, err := carddav.NewClient(webdav.HTTPClientWithBasicAuth(rec, creds.Username, string(creds.Password)), creds.URL)
	if err != nil {
		return nil, err
	}

	return &Client{dav: dav, rec: rec, path: u.Path, logger: f.logger}, nil
}

// Client synchronizes every address book reachable from one endpoint into
// a single directory source.
type Client struct {
	dav    davClient
	rec    *statusRecorder
	path   string
	logger logging.Logger
}

// CheckConnection verifies that at least one address book can be found
// with the configured credentials.
func (c *Client) CheckConnection(ctx context.Context) error {
	if _, err := c.addressBooks(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorConnectivity, err)
	}
	return nil
}

// Synchronize fetches every address object and reconciles the sink with it.
// An object that cannot be encoded is skipped; the rest of the pass goes on.
func (c *Client) Synchronize(ctx context.Context, sink directory.Sink) error {
	books, err := c.addressBooks(ctx)
	if err != nil {
		return err
	}

	query := &carddav.AddressBookQuery{
		DataRequest: carddav.AddressDataRequest{AllProp: true},
	}

	var remote []directory.Object
	for _, book := range books {
		objs, err := c.dav.QueryAddressBook(ctx, book, query)
		if err != nil {
			return c.classify(fmt.Errorf("querying %s: %w", book, err))
		}
		for i := range objs {
			obj, err := toObject(&objs[i])
			if err != nil {
				c.logger.Warn(ctx, "skipping address object", "href", objs[i].Path, "error", err)
				continue
			}
			remote = append(remote, obj)
		}
	}

	return reconcile(ctx, sink, remote)
}

// addressBooks discovers the address books through the principal's home
// set. When discovery is not supported the endpoint itself is tried.
func (c *Client) addressBooks(ctx context.Context) ([]string, error) {
	if paths, err := c.discover(ctx); err == nil && len(paths) > 0 {
		return paths, nil
	} else if c.rec.unauthorized() {
		return nil, c.classify(err)
	}

	books, err := c.dav.FindAddressBooks(ctx, c.path)
	if err != nil {
		return nil, c.classify(err)
	}
	if len(books) == 0 {
		return nil, ErrNoAddressBook
	}
	return bookPaths(books), nil
}

func (c *Client) discover(ctx context.Context) ([]string, error) {
	principal, err := c.dav.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	home, err := c.dav.FindAddressBookHomeSet(ctx, principal)
	if err != nil {
		return nil, err
	}
	books, err := c.dav.FindAddressBooks(ctx, home)
	if err != nil {
		return nil, err
	}
	return bookPaths(books), nil
}

func (c *Client) classify(err error) error {
	if c.rec.unauthorized() {
		if err == nil {
			return ErrCredentialsRejected
		}
		return fmt.Errorf("%w: %w", ErrCredentialsRejected, err)
	}
	return err
}

func bookPaths(books []carddav.AddressBook) []string {
	paths := make([]string, 0, len(books))
	for _, b := range books {
		paths = append(paths, b.Path)
	}
	return paths
}

// toObject re-encodes the card. Cards without VERSION are written as 3.0.
func toObject(ao *carddav.AddressObject) (directory.Object, error) {
	buf := bytes.NewBuffer([]byte{})
	if ao.Card != nil {
		card := ao.Card
		if card.Value(vcard.FieldVersion) == "" {
			card = make(vcard.Card, len(ao.Card)+1)
			for k, v := range ao.Card {
				card[k] = v
			}
			card.SetValue(vcard.FieldVersion, "3.0")
		}
		if err := encodeCard(buf, card); err != nil {
			return directory.Object{}, fmt.Errorf("encoding %s: %w", ao.Path, err)
		}
	}

	obj := directory.Object{Href: ao.Path, ETag: ao.ETag, VCard: buf.Bytes()}
	if ao.Card != nil {
		obj.UID = ao.Card.Value(vcard.FieldUID)
		obj.DisplayName = ao.Card.PreferredValue(vcard.FieldFormattedName)
		obj.Email = ao.Card.PreferredValue(vcard.FieldEmail)
	}
	return obj, nil
}

// statusRecorder remembers whether the server ever answered 401.
type statusRecorder struct {
	next   webdav.HTTPClient
	denied atomic.Bool
}

func (r *statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.next.Do(req)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		r.denied.Store(true)
	}
	return resp, err
}

func (r *statusRecorder) unauthorized() bool {
	return r.denied.Load()
}
