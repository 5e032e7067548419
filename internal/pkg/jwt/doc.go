// Package jwt verifies and issues HS512 access tokens shared with the
// marketplace auth service, and carries the verified identity through a
// context.
package jwt
