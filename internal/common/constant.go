// Package common contains shared constants and sentinel errors used across
// the recipe service components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme prefix expected on recipe routes.
const BearerScheme = "Bearer"
