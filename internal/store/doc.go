// Package store executes filtered queries against SQLite.
//
// It is the caller-side end of the pipeline: a decoded query input is
// folded into a querysql.Select, which Store.Select compiles with the
// SQLite dialect and runs. Values are always bound as parameters.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes (file databases)
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// # Deterministic Results
//
// Row order is whatever the statement's ORDER BY says. Callers that compare
// results (tests, golden files) must set one.
package store
