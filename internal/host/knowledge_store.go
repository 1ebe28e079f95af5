package host

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver, registered as "pgx"
	_ "github.com/mattn/go-sqlite3"    // sqlite driver, registered as "sqlite3"
	"go.uber.org/zap"
)

// KnowledgeStoreHost is a Capability backed by a SQL table of knowledge
// records: (title, summary, confidence, source). It answers knowledge()
// queries with a substring match against title/summary, optionally narrowed
// by an exact match on the source column when filters holds a "source"
// string; other filter keys are ignored. This is a
// host-side fixture store (spec.md §11), not an external LLM provider.
//
// Selecting "postgres"/"pgx" as the DSN scheme uses jackc/pgx; "sqlite"
// (or a bare file path) uses mattn/go-sqlite3 — the same two-driver
// selection the rest of the corpus's ORM layer supports.
type KnowledgeStoreHost struct {
	*DefaultHost
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// OpenKnowledgeStore opens (or connects to) the knowledge table at dsn.
// table defaults to "knowledge_records". Logging falls back to a no-op
// logger if zap.NewProduction fails to build one, the same degrade-gracefully
// pattern the teacher's LSP server uses around its own zap logger.
func OpenKnowledgeStore(dsn, table string) (*KnowledgeStoreHost, error) {
	if table == "" {
		table = "knowledge_records"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	driver := "sqlite3"
	connDSN := dsn
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "pgx://") {
		driver = "pgx"
		connDSN = strings.TrimPrefix(dsn, "pgx://")
	} else {
		connDSN = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sql.Open(driver, connDSN)
	if err != nil {
		return nil, fmt.Errorf("open knowledge store: %w", err)
	}

	logger.Info("opened knowledge store", zap.String("driver", driver), zap.String("table", table))

	return &KnowledgeStoreHost{
		DefaultHost: NewDefaultHost(),
		db:          db,
		table:       table,
		logger:      logger,
	}, nil
}

// Close releases the underlying database handle.
func (h *KnowledgeStoreHost) Close() error {
	_ = h.logger.Sync()
	return h.db.Close()
}

// Knowledge queries the backing table for rows whose title or summary
// contains query (case-insensitive), optionally further restricted to rows
// whose source column matches filters["source"].
func (h *KnowledgeStoreHost) Knowledge(query string, filters map[string]interface{}) ([]Record, error) {
	sqlQuery := fmt.Sprintf(
		`SELECT title, summary, confidence, source FROM %s WHERE (title LIKE ? OR summary LIKE ?)`,
		h.table,
	)
	like := "%" + query + "%"
	args := []interface{}{like, like}

	if source, ok := filters["source"].(string); ok && source != "" {
		sqlQuery += " AND source = ?"
		args = append(args, source)
	}
	sqlQuery += " ORDER BY confidence DESC"

	rows, err := h.db.Query(sqlQuery, args...)
	if err != nil {
		h.logger.Error("knowledge query failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("knowledge query: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var title, summary, source string
		var confidence float64
		if err := rows.Scan(&title, &summary, &confidence, &source); err != nil {
			return nil, fmt.Errorf("scan knowledge row: %w", err)
		}
		results = append(results, Record{
			"title":      title,
			"summary":    summary,
			"confidence": confidence,
			"source":     source,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
