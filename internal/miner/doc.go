// Package miner is a CPU search engine for proof-of-work nonces.
//
// A Miner implements both pow.Engine and pow.AsyncEngine. It hashes the
// prefix once, then each worker restores that SHA-256 midstate and appends
// a decimal nonce and the suffix. Worker i of N tries i, i+N, i+2N, ...
// so the workers never repeat each other's candidates.
//
// The first worker to reach the target wins and the others stop. The
// caller's context is polled every PollInterval attempts per worker.
package miner
