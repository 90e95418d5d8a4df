// Package demo is a worked example: the TwoTablesQuery aggregate declared in
// manifest.cue and the code generated from it.
//
// Regenerate after editing the manifest:
//
//	go generate ./internal/demo
package demo

//go:generate go run ../../cmd/jsonlogic generate --source internal/demo/manifest.cue --out . manifest.cue
