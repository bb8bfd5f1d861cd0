// Package httpserver exposes the auth and recipe services over a JSON HTTP
// API under /api/v1. It owns request decoding, bearer-token checks, error
// bodies, CORS, request logging and Prometheus metrics.
package httpserver
