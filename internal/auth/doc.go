// Package auth issues and verifies the JWT access tokens that protect the
// HTTP API.
//
// There are no user accounts: an operator mints a token for a subject and
// role with `adaptivecover token`, signed with security.jwt.secret. Roles
// map statically to permissions:
//
//	viewer    entity:read
//	operator  entity:read, entity:write
//	admin     everything, including system:admin
package auth
