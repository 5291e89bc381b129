// Package client is the carddavctl side of the DirectorySync gRPC API.
// GRPCClient attaches the stored access token and the preferred language to
// every call and maps status codes onto the package's sentinel errors.
package client
