// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary lifecycle of loading, compiling
// and shipping a pipeline, decoupled from any specific entrypoint like a CLI.
package app
