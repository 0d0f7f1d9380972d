package writer

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantfold/backtest/internal/types"
)

// DuckDBWriter buffers candles in an in-memory DuckDB table and exports
// them as a Parquet file on Finalize. The file layout matches what the
// backtest DuckDB datasource reads.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a writer that exports to the given Parquet path.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		db:         nil,
		tx:         nil,
		stmt:       nil,
		outputPath: outputPath,
	}
}

// Initialize implements MarketDataWriter.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write implements MarketDataWriter.
func (w *DuckDBWriter) Write(candle types.MarketData) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized")
	}

	_, err := w.stmt.Exec(
		candle.Time,
		candle.Open,
		candle.High,
		candle.Low,
		candle.Close,
		candle.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert candle: %w", err)
	}

	return nil
}

// Finalize implements MarketDataWriter. It commits the transaction and
// exports the table ordered by time so the datasource can rely on
// ascending timestamps.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY time) TO '%s' (FORMAT PARQUET)`, w.outputPath))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close implements MarketDataWriter.
func (w *DuckDBWriter) Close() error {
	if w.stmt != nil {
		w.stmt.Close()
	}

	if w.tx != nil {
		w.tx.Rollback()
	}

	if w.db != nil {
		return w.db.Close()
	}

	return nil
}
