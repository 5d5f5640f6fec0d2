// Package mcp provides an MCP (Model Context Protocol) server adapter
// for epistle. It lets AI assistants search and question indexed mail.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
