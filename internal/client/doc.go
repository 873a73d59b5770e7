// SPDX-License-Identifier: Apache-2.0

// Package client implements the command-line client runtime.
//
// It wires the durable local store, the remote adapter, and the sync
// services into a single process lifecycle behind a cobra command tree.
package client
