package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AcceptLanguageHeaderName carries the caller's preferred languages for
// user-facing messages.
const AcceptLanguageHeaderName = "accept-language"

// SecretMask replaces a stored password wherever a server is displayed.
const SecretMask = "**********"
