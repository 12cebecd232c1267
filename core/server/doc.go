// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package
// defines the configuration structure for the listener and API protection.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key and the actor name
// recorded on catalog writes made through the API.
package server
