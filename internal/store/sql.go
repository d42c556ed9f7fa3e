package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"StockTracker/internal/model"
)

// dialect holds the statements that differ between database engines.
type dialect struct {
	schema         []string
	registerTicker string
	upsertStock    string
	upsertBar      string
}

var dialects = map[string]dialect{
	"sqlite": {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS stocks (
				ticker             TEXT PRIMARY KEY,
				name               TEXT NOT NULL,
				day_open           REAL,
				day_high           REAL,
				day_low            REAL,
				day_close          REAL,
				volume             REAL,
				todays_change      REAL,
				todays_change_perc REAL,
				dma_30             REAL,
				dma_50             REAL,
				dma_200            REAL,
				dma_200_perc_diff  REAL,
				high_52w           REAL,
				low_52w            REAL,
				updated_at         INTEGER
			)`,
			`CREATE TABLE IF NOT EXISTS bars (
				ticker   TEXT NOT NULL,
				timespan TEXT NOT NULL,
				date     INTEGER NOT NULL,
				open     REAL,
				high     REAL,
				low      REAL,
				close    REAL,
				volume   REAL,
				PRIMARY KEY (ticker, timespan, date)
			)`,
		},
		registerTicker: `INSERT OR IGNORE INTO stocks (ticker, name) VALUES (?, ?)`,
		upsertStock: `INSERT INTO stocks (` + stockColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(ticker) DO UPDATE SET ` + setColumns(stockColumns, "excluded.%s"),
		upsertBar: `INSERT INTO bars (` + barColumns + `) VALUES (?,?,?,?,?,?,?,?)
			ON CONFLICT(ticker, timespan, date) DO UPDATE SET ` + setColumns(barColumns, "excluded.%s"),
	},
	"mysql": {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS stocks (
				ticker             VARCHAR(16) PRIMARY KEY,
				name               VARCHAR(128) NOT NULL,
				day_open           DOUBLE,
				day_high           DOUBLE,
				day_low            DOUBLE,
				day_close          DOUBLE,
				volume             DOUBLE,
				todays_change      DOUBLE,
				todays_change_perc DOUBLE,
				dma_30             DOUBLE,
				dma_50             DOUBLE,
				dma_200            DOUBLE,
				dma_200_perc_diff  DOUBLE,
				high_52w           DOUBLE,
				low_52w            DOUBLE,
				updated_at         BIGINT
			)`,
			`CREATE TABLE IF NOT EXISTS bars (
				ticker   VARCHAR(16) NOT NULL,
				timespan VARCHAR(8) NOT NULL,
				date     BIGINT NOT NULL,
				open     DOUBLE,
				high     DOUBLE,
				low      DOUBLE,
				close    DOUBLE,
				volume   DOUBLE,
				PRIMARY KEY (ticker, timespan, date)
			)`,
		},
		registerTicker: `INSERT IGNORE INTO stocks (ticker, name) VALUES (?, ?)`,
		upsertStock: `INSERT INTO stocks (` + stockColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON DUPLICATE KEY UPDATE ` + setColumns(stockColumns, "VALUES(%s)"),
		upsertBar: `INSERT INTO bars (` + barColumns + `) VALUES (?,?,?,?,?,?,?,?)
			ON DUPLICATE KEY UPDATE ` + setColumns(barColumns, "VALUES(%s)"),
	},
}

const stockColumns = `ticker, name, day_open, day_high, day_low, day_close, volume,
	todays_change, todays_change_perc, dma_30, dma_50, dma_200, dma_200_perc_diff,
	high_52w, low_52w, updated_at`

const barColumns = `ticker, timespan, date, open, high, low, close, volume`

// setColumns builds the update list of an upsert from a column list, skipping the
// leading key columns that appear in the conflict target.
func setColumns(columns, format string) string {
	var sets []string
	for _, c := range strings.Split(columns, ",") {
		c = strings.TrimSpace(c)
		switch c {
		case "ticker", "timespan", "date":
			continue
		}
		sets = append(sets, c+" = "+fmt.Sprintf(format, c))
	}
	return strings.Join(sets, ", ")
}

// SQLStore persists stocks and bars to SQLite or MySQL.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	mu      sync.Mutex
}

// NewSQLStore opens (or creates) the database and runs migrations. driver is
// "sqlite" or "mysql".
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// WAL mode for concurrent reads while the refresh job writes.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] %s store opened", driver)
	return s, nil
}

func (s *SQLStore) migrate() error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(stmt)[:40], err)
		}
	}
	return nil
}

func (s *SQLStore) RegisterTicker(ctx context.Context, ticker, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, s.dialect.registerTicker, NormalizeTicker(ticker), name)
	return err
}

func (s *SQLStore) UpsertStock(ctx context.Context, st *model.Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, s.dialect.upsertStock,
		NormalizeTicker(st.Ticker), st.Name,
		st.DayOpen, st.DayHigh, st.DayLow, st.DayClose, st.Volume,
		st.TodaysChange, st.TodaysChangePerc,
		st.DMA30, st.DMA50, st.DMA200, st.DMA200PercDiff,
		st.High52w, st.Low52w, st.UpdatedAt.Unix(),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStock(row rowScanner) (*model.Stock, error) {
	var (
		st      model.Stock
		vals    [13]sql.NullFloat64
		updated sql.NullInt64
	)
	dest := []interface{}{&st.Ticker, &st.Name}
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	dest = append(dest, &updated)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	fields := []*float64{
		&st.DayOpen, &st.DayHigh, &st.DayLow, &st.DayClose, &st.Volume,
		&st.TodaysChange, &st.TodaysChangePerc,
		&st.DMA30, &st.DMA50, &st.DMA200, &st.DMA200PercDiff,
		&st.High52w, &st.Low52w,
	}
	for i, f := range fields {
		*f = vals[i].Float64
	}
	if updated.Valid {
		st.UpdatedAt = time.Unix(updated.Int64, 0).UTC()
	}
	return &st, nil
}

func (s *SQLStore) GetStock(ctx context.Context, ticker string) (*model.Stock, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+stockColumns+` FROM stocks WHERE ticker = ?`, NormalizeTicker(ticker))
	st, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stock %s: %w", ticker, err)
	}
	return st, nil
}

func (s *SQLStore) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker FROM stocks ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveBars(ctx context.Context, ticker string, span model.Timespan, bars []model.OHLCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.dialect.upsertBar)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	ticker = NormalizeTicker(ticker)
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, string(span), b.Time.Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("save bar %s %s: %w", ticker, b.Time.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Bars(ctx context.Context, ticker string, span model.Timespan) ([]model.OHLCV, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, open, high, low, close, volume FROM bars
		WHERE ticker = ? AND timespan = ? ORDER BY date ASC`,
		NormalizeTicker(ticker), string(span))
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var out []model.OHLCV
	for rows.Next() {
		var (
			ts int64
			b  model.OHLCV
		)
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Time = time.Unix(ts, 0).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func (s *SQLStore) SearchStocks(ctx context.Context, query string, limit int) ([]model.Suggestion, error) {
	if query == "" {
		return []model.Suggestion{}, nil
	}
	pattern := escapeLike(strings.ToUpper(query)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, name FROM stocks
		WHERE ticker LIKE ? ESCAPE '!' OR UPPER(name) LIKE ? ESCAPE '!'
		ORDER BY COALESCE(day_close, 0) * COALESCE(volume, 0) DESC, ticker ASC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search stocks: %w", err)
	}
	defer rows.Close()

	out := []model.Suggestion{}
	for rows.Next() {
		var sg model.Suggestion
		if err := rows.Scan(&sg.Ticker, &sg.Name); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

func (s *SQLStore) TopStocks(ctx context.Context, limit int) (*model.TopStocks, error) {
	top := &model.TopStocks{}
	for _, q := range []struct {
		order string
		dst   *[]model.Stock
	}{
		{"todays_change_perc DESC", &top.Gainers},
		{"todays_change_perc ASC", &top.Losers},
		{"volume DESC", &top.TopTraded},
	} {
		list, err := s.queryStocks(ctx, `SELECT `+stockColumns+` FROM stocks
			WHERE day_close IS NOT NULL ORDER BY `+q.order+`, ticker ASC LIMIT ?`, limit)
		if err != nil {
			return nil, fmt.Errorf("top stocks: %w", err)
		}
		*q.dst = list
	}
	return top, nil
}

func (s *SQLStore) queryStocks(ctx context.Context, query string, args ...interface{}) ([]model.Stock, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Stock{}
	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	log.Println("[INFO] closing store")
	return s.db.Close()
}
