// Package digesttool drives one invocation of the digest tool. Resolve
// turns the collected command-line Options into a Config with exactly one
// Mode; Runner.Run then either streams the source through the digest
// engine, or registers or removes the shell context-menu entries, and
// returns a Report that renders as text or JSON.
package digesttool
