package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Credentials configure the postgres backend.
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// SQLStore implements Store on database/sql. Production runs it on
// postgres; tests and single-binary setups run it on sqlite with the
// same queries.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewPostgresStore(cred *Credentials) (*SQLStore, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &SQLStore{db: db, driver: "postgres"}, nil
}

func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	return &SQLStore{db: db, driver: "sqlite"}, nil
}

func (s *SQLStore) RunMigrations(migrationsPath string) error {
	var (
		m   *migrate.Migrate
		err error
	)
	switch s.driver {
	case "postgres":
		d, e := migratepg.WithInstance(s.db, &migratepg.Config{MigrationsTable: "ledger_schema_migrations"})
		if e != nil {
			return fmt.Errorf("could not create migration driver: %w", e)
		}
		m, err = migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), "postgres", d)
	default:
		d, e := migratesqlite.WithInstance(s.db, &migratesqlite.Config{MigrationsTable: "ledger_schema_migrations"})
		if e != nil {
			return fmt.Errorf("could not create migration driver: %w", e)
		}
		m, err = migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), "sqlite", d)
	}
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (s *SQLStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	unavailableJSON, err := json.Marshal(ticket.UnavailableLines)
	if err != nil {
		return fmt.Errorf("failed to marshal unavailable lines: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO tickets (id, code, purchaser_id, purchaser_email, total, item_count, status, unavailable_lines, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, insertErr := tx.ExecContext(ctx, query,
		ticket.ID,
		ticket.Code,
		ticket.PurchaserID,
		ticket.PurchaserEmail,
		ticket.Total,
		ticket.ItemCount,
		string(ticket.Status),
		string(unavailableJSON),
		ticket.CreatedAt.UTC())

	if insertErr != nil {
		if isUniqueViolation(insertErr) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert ticket: %w", insertErr)
	}

	lineQuery := `INSERT INTO ticket_lines (ticket_id, line_no, product_id, name, unit_price, quantity)
	              VALUES ($1, $2, $3, $4, $5, $6)`

	for i, line := range ticket.FulfilledLines {
		if _, e := tx.ExecContext(ctx, lineQuery,
			ticket.ID, i, line.ProductID, line.Name, line.UnitPrice, line.Quantity); e != nil {
			return fmt.Errorf("insert ticket line: %w", e)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ticket: %w", err)
	}
	return nil
}

const ticketColumns = `id, code, purchaser_id, purchaser_email, total, item_count, status, unavailable_lines, created_at`

func (s *SQLStore) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return s.queryOne(ctx, query, id)
}

func (s *SQLStore) FindByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE code = $1`
	return s.queryOne(ctx, query, code)
}

func (s *SQLStore) queryOne(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket: %w", err)
	}

	if err := s.loadLines(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *SQLStore) FindByPurchaser(ctx context.Context, purchaserID string, page, pageSize int) ([]*domain.Ticket, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE purchaser_id = $1`, purchaserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets
	          WHERE purchaser_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	tickets, err := s.queryPage(ctx, query, purchaserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (s *SQLStore) FindAll(ctx context.Context, page, pageSize int) ([]*domain.Ticket, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets
	          ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	tickets, err := s.queryPage(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (s *SQLStore) queryPage(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, ticket := range tickets {
		if err := s.loadLines(ctx, ticket); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

func (s *SQLStore) loadLines(ctx context.Context, ticket *domain.Ticket) error {
	query := `SELECT product_id, name, unit_price, quantity
	          FROM ticket_lines WHERE ticket_id = $1 ORDER BY line_no`

	rows, err := s.db.QueryContext(ctx, query, ticket.ID)
	if err != nil {
		return fmt.Errorf("query ticket lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.FulfilledLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			return fmt.Errorf("scan ticket line: %w", err)
		}
		ticket.FulfilledLines = append(ticket.FulfilledLines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func (s *SQLStore) AggregateSales(ctx context.Context) (*domain.SalesReport, error) {
	report := &domain.SalesReport{}

	summaryQuery := `SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(SUM(item_count), 0),
	                        COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0)
	                 FROM tickets`
	err := s.db.QueryRowContext(ctx, summaryQuery).Scan(
		&report.Summary.TotalRevenue,
		&report.Summary.TotalTickets,
		&report.Summary.TotalItems,
		&report.Summary.CompletedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales summary: %w", err)
	}

	topQuery := `SELECT product_id, MAX(name), SUM(quantity), SUM(unit_price * quantity)
	             FROM ticket_lines
	             GROUP BY product_id
	             ORDER BY SUM(quantity) DESC
	             LIMIT 5`
	rows, err := s.db.QueryContext(ctx, topQuery)
	if err != nil {
		return nil, fmt.Errorf("aggregate top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.QuantitySold, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		report.TopProducts = append(report.TopProducts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return report, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket          domain.Ticket
		status          string
		unavailableJSON []byte
	)
	err := row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.PurchaserID,
		&ticket.PurchaserEmail,
		&ticket.Total,
		&ticket.ItemCount,
		&status,
		&unavailableJSON,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatus(status)
	if err := json.Unmarshal(unavailableJSON, &ticket.UnavailableLines); err != nil {
		return nil, fmt.Errorf("unmarshal unavailable lines: %w", err)
	}
	return &ticket, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
