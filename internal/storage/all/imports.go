// Package all registers every built-in report store backend.
package all

import (
	_ "dmml/internal/storage/mssql"
	_ "dmml/internal/storage/mysql"
	_ "dmml/internal/storage/postgres"
	_ "dmml/internal/storage/sqlite"
)
