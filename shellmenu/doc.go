// Package shellmenu registers and removes the DigestTool entries of the
// per-user file context menu.
//
// A Namespace exposes the three primitives the menu tree is built from:
// create a key, delete a key recursively, and set a named property. Three
// backends exist: Memory (in-process, used by tests and dry runs),
// PowerShell (shells out to powershell.exe), and the native Windows
// registry returned by NewRegistry.
//
// Manager turns the algorithm set into an ordered list of named Steps.
// Register starts by removing the whole tree, so repeated calls converge on
// one parent and one child per algorithm. Steps run fail-fast: the first
// failure stops the sequence and earlier steps stay applied. The returned
// *StepError names the failed step and matches ErrRegistration.
package shellmenu
