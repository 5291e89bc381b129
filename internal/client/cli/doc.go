// Package cli implements carddavctl, a cobra command tree for managing
// CardDAV servers and triggering synchronization through the gRPC API.
//
// Commands
//
//	login                 store an access token for the endpoint
//	logout                forget the stored token
//	server add            register a CardDAV server (password is prompted)
//	server list           list registered servers, passwords masked
//	server delete <id>    remove a server and its mirrored contacts
//	sync [server-id]      synchronize one server or all of them
//	sources               list the address-book sources the host sees
//	available             report whether any server is registered
//	health                check that the backend is serving
//	version               print build information
package cli
