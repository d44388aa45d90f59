//go:build pftoff

package pft

// With pftoff, Enabled is a compile-time false and the recording paths are
// dead code the compiler can eliminate.
const compiledIn = false
