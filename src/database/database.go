package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/comissio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		upload_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		source_name TEXT NOT NULL,
		record_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		upload_time TIMESTAMP,
		source_name TEXT,
		sale_date TEXT,
		allocation_date TEXT,
		commissioned_code TEXT,
		salesperson_point_code TEXT,
		team_code TEXT,
		contract TEXT,
		consortium_code TEXT,
		consortium_name TEXT,
		quota_status TEXT,
		installment_progress TEXT,
		rule_code TEXT,
		category_code TEXT,
		commission_percent REAL,
		base_calc_amount REAL,
		commission_amount REAL,
		reversal_amount REAL,
		cancellation_amount REAL,
		base_amount REAL,
		net_amount REAL,
		salesperson TEXT,
		FOREIGN KEY(batch_id) REFERENCES uploads(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sales_batch_id ON sales(batch_id);
	`

	if _, err = DB.Exec(createTableStatement); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}

	migrateSalesTable()

	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	}
}

// migrateSalesTable adds the extended-schema installment columns to
// databases created before delinquency support existed.
func migrateSalesTable() {
	rows, err := DB.Query("PRAGMA table_info(sales)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'sales'", "error", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'sales'", "error", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'sales'", "error", err)
		}
		return
	}

	for _, col := range []string{"due_date", "payment_date"} {
		if columnExists[col] {
			continue
		}
		if _, err := DB.Exec("ALTER TABLE sales ADD COLUMN " + col + " TEXT"); err != nil {
			if logger.L != nil {
				logger.L.Error("Error adding column to 'sales' table", "column", col, "error", err)
			}
		} else if logger.L != nil {
			logger.L.Info("Added column to 'sales' table", "column", col)
		}
	}
}
