// Package server holds the HTTP server configuration.
//
// The main application entry point handles the actual server startup;
// this package defines the configuration structure it reads: the listen
// port and the optional API key protecting mutating endpoints.
package server
