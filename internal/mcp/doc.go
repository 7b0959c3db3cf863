// Package mcp implements the session control server: a small,
// ephemeral MCP endpoint that lets an agent runtime act on its
// enclosing session.
//
// Two tools are exposed:
//
//   - change_title: forwards a new human-readable session title to the
//     external session client as a summary event.
//   - inject_reminder: pushes a reminder message into the live
//     conversation queue owned by the enclosing process. Registered
//     only when a queue accessor was supplied at construction.
//
// The server binds an OS-assigned port on loopback and speaks the MCP
// streamable HTTP transport in stateless mode: no session identifier
// is issued per exchange, which keeps the known caller's
// initialization handshake working.
//
// Error policy: nothing that goes wrong inside a tool handler escapes
// to the transport. Handler failures become tool results with
// IsError set and a human-readable cause; only construction-time
// configuration errors are fatal.
//
// Lifecycle: NewServer registers the tool set (immutable afterwards),
// Start binds the endpoint and returns a Handle, Handle.Stop releases
// it. Stop is idempotent.
package mcp
