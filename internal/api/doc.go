// Package api contains the HTTP handlers, request/response models, and
// error mapping for the prime API. Handlers translate between the wire
// format and the service layer; they hold no business logic of their own.
package api
