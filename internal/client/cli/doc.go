// Package cli provides the recipectl command-line client.
//
// It wires configuration, the local session cache and API services into a
// cobra command tree:
//
//	recipectl register
//	recipectl login | logout | whoami
//	recipectl recipes list | show <id> | add | edit <id> | delete <id>
//
// A successful login caches the bearer token per server URL, so later
// commands run without prompting until the token expires or the server
// rejects it.
package cli
