// Package client contains client-side building blocks for recipectl.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface) used by the CLI services
//     to talk to the recipe server: Register, Login and recipe CRUD.
//  2. A concrete REST implementation (see HTTPClient) that sends bearer
//     tokens and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite session cache and applying embedded goose migrations.
//
// # Error Handling
//
// Transport and auth conditions are exposed as sentinel errors matched with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrConflict.
// Rejections carrying server-side detail are returned as *APIError.
package client
