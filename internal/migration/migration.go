// Package migration holds the SQL schema for a fresh database.
package migration

import _ "embed"

//go:embed create-tables.sql
var Create string
