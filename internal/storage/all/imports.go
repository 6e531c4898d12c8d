// Package all wires all built-in SQL sources into the storage factory.
//
// Importing it for side effects makes these kinds available to storage.New:
//
//   - "postgres" (casetrend/internal/storage/postgres)
//   - "mysql"    (casetrend/internal/storage/mysql)
//   - "mssql"    (casetrend/internal/storage/mssql)
//   - "sqlite"   (casetrend/internal/storage/sqlite)
//
// A binary that needs only a subset can import the backend packages directly.
package all

import (
	_ "casetrend/internal/storage/mssql"
	_ "casetrend/internal/storage/mysql"
	_ "casetrend/internal/storage/postgres"
	_ "casetrend/internal/storage/sqlite"
)
