// Package app contains the core application logic. It defines the main App
// struct and its configuration, and exposes discovery, page config
// generation, validation, trigger execution and rendering to any entrypoint,
// including the HTTP server and the source watcher it runs itself.
package app
