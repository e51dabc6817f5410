// Package testutil provides stub search engines, fixture events and
// deterministic id generators for tests.
//
// The stubs satisfy pow.Engine and pow.AsyncEngine structurally, so this
// package does not import pow and can be used from pow's own tests.
package testutil
