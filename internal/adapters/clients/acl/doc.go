// Package acl is the anti-corruption layer between remote quote libraries
// and the domain. Remote payloads are decoded into unexported DTOs, then
// translated into domain.Draft values; transport and status failures are
// mapped onto domain errors so nothing above this package sees HTTP.
//
// Status mapping:
//
//	404          domain.ErrNotFound
//	409          domain.ErrConflict
//	400, 422     domain.ErrValidation
//	401, 403     domain.ErrForbidden
//	429, 5xx     domain.ErrUnavailable
//	transport    domain.ErrUnavailable
//
// Payloads the library cannot make sense of become domain.ErrFormat or
// domain.ErrParse, the same errors a local import would produce.
package acl
