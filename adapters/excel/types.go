package excel

import "safetyhub/domain/table"

// Sheet is one worksheet (or a whole CSV file) read into a table.
type Sheet struct {
	Name  string
	Table *table.Table
}
