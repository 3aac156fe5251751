// Package unidiff applies parsed unified-diff patches to a directory tree.
//
// Application is strictly exact: context and deleted lines must match the
// target file byte for byte, and any deviation aborts the whole run with a
// structured error. There is no fuzzy matching and no resynchronization, which
// makes the engine deterministic and auditable for build systems and other
// tooling that cannot tolerate approximate patching.
//
// The package also ships the parser that produces the structured patch set
// from unified-diff text, an OS-backed and an in-memory filesystem view, and
// helpers to render application failures for end users.
package unidiff
