//go:build !pftoff

package pft

const compiledIn = true
