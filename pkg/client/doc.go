// Package client is a typed HTTP client for the tool backend: tool listing,
// schema lookup, execution, configuration, service lifecycle and logs.
//
// Failures fall into three classes. ErrTransport wraps network errors,
// *APIError carries non-2xx responses, and ErrMalformedResponse flags
// payloads missing the keys a call depends on. Message turns any of them
// into the text a console shows to its user.
package client
