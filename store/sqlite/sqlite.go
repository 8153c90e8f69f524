/*
Package sqlite provides SQLite-backed persistence for contracts and rates.

PURPOSE:
  Stores contract headers, contract version documents, and selling rate
  documents. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

DOCUMENT STORAGE:
  Versions and rates are stored as JSON documents (the factory package's
  wire form) next to the columns the queries filter on: validity bounds,
  contract/product linkage, active flag. Every document is validated
  through the factory on the way in AND on the way out, so a row that
  loads is a row the resolvers can trust.

KEY TABLES:
  contracts:         Supplier contract headers
  contract_versions: Dated term snapshots (JSON documents)
  selling_rates:     Price definitions (JSON documents)

INDEXES:
  - idx_versions_contract_validity: Effective-version candidate lookup (hot path)
  - idx_rates_product_validity:     Rate lookup by product option and date

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/tariff.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  versions, err := store.ListVersions(ctx, "hotel-aurora")

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - factory: JSON document conversion
  - api: HTTP surface over this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/voyago/tariff-engine/contract"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/factory"
	"github.com/voyago/tariff-engine/rates"
)

// Store persists contracts, versions, and rates in SQLite.
type Store struct {
	db      *sql.DB
	factory *factory.Factory
	mu      sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.New()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Supplier contract headers
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		supplier_name TEXT NOT NULL,
		product_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_supplier
		ON contracts(supplier_name);
	CREATE INDEX IF NOT EXISTS idx_contracts_status
		ON contracts(status);

	-- Contract versions (dated term snapshots, JSON documents)
	CREATE TABLE IF NOT EXISTS contract_versions (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT NOT NULL,
		supersedes_id TEXT,
		document_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_versions_contract
		ON contract_versions(contract_id);

	-- Candidate lookup for effective-version resolution (hot path)
	CREATE INDEX IF NOT EXISTS idx_versions_contract_validity
		ON contract_versions(contract_id, valid_from, valid_to);

	-- Selling rates (price definitions, JSON documents)
	CREATE TABLE IF NOT EXISTS selling_rates (
		id TEXT PRIMARY KEY,
		product_option_id TEXT NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT NOT NULL,
		currency TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		document_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rates_product
		ON selling_rates(product_option_id);

	-- Rate lookup by product option and service date
	CREATE INDEX IF NOT EXISTS idx_rates_product_validity
		ON selling_rates(product_option_id, valid_from, valid_to);
	CREATE INDEX IF NOT EXISTS idx_rates_active
		ON selling_rates(is_active);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONTRACT HEADERS
// =============================================================================

// Contract is a supplier contract header. Versions carry the actual terms.
type Contract struct {
	ID           engine.ContractID
	Name         string
	SupplierName string
	ProductType  string // e.g. "hotel", "transfer", "excursion"
	Status       string // active, suspended, archived
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaveContract inserts or updates a contract header. An empty ID gets a
// generated one; the saved record is returned.
func (s *Store) SaveContract(ctx context.Context, c Contract) (Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = engine.ContractID(uuid.NewString())
	}
	if c.Status == "" {
		c.Status = "active"
	}

	query := `
		INSERT INTO contracts (id, name, supplier_name, product_type, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			supplier_name = excluded.supplier_name,
			product_type = excluded.product_type,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.SupplierName, c.ProductType, c.Status, c.Notes, now, now,
	)
	if err != nil {
		return Contract{}, fmt.Errorf("failed to save contract: %w", err)
	}
	return c, nil
}

// GetContract retrieves a contract header by ID. Returns nil when absent.
func (s *Store) GetContract(ctx context.Context, id engine.ContractID) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Contract
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, supplier_name, product_type, status, notes, created_at, updated_at FROM contracts WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.SupplierName, &c.ProductType, &c.Status, &c.Notes, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

// ListContracts returns all contract headers.
func (s *Store) ListContracts(ctx context.Context) ([]Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, supplier_name, product_type, status, notes, created_at, updated_at FROM contracts ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.SupplierName, &c.ProductType, &c.Status, &c.Notes, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// DeleteContract removes a contract header and its versions.
func (s *Store) DeleteContract(ctx context.Context, id engine.ContractID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM contract_versions WHERE contract_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// CONTRACT VERSIONS
// =============================================================================

// SaveVersion validates and persists a contract version. An empty ID gets a
// generated one; the saved version is returned.
func (s *Store) SaveVersion(ctx context.Context, v contract.ContractVersion) (contract.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = engine.VersionID(uuid.NewString())
	}
	if err := v.Validate(); err != nil {
		return contract.ContractVersion{}, err
	}

	doc, err := json.Marshal(s.factory.ToContractJSON(v))
	if err != nil {
		return contract.ContractVersion{}, fmt.Errorf("failed to serialize version: %w", err)
	}

	query := `
		INSERT INTO contract_versions
		(id, contract_id, valid_from, valid_to, supersedes_id, document_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			contract_id = excluded.contract_id,
			valid_from = excluded.valid_from,
			valid_to = excluded.valid_to,
			supersedes_id = excluded.supersedes_id,
			document_json = excluded.document_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		v.ID, v.ContractID,
		v.ValidFrom.String(), v.ValidTo.String(),
		nullString(string(v.SupersedesID)),
		string(doc), now, now,
	)
	if err != nil {
		return contract.ContractVersion{}, fmt.Errorf("failed to save version: %w", err)
	}
	return v, nil
}

// GetVersion retrieves a version by ID. Returns nil when absent.
func (s *Store) GetVersion(ctx context.Context, id engine.VersionID) (*contract.ContractVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document_json FROM contract_versions WHERE id = ?", id,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	v, err := s.factory.ParseContractVersion(doc)
	if err != nil {
		return nil, fmt.Errorf("stored version %s is corrupt: %w", id, err)
	}
	return &v, nil
}

// ListVersions returns all versions of a contract, oldest validity first.
func (s *Store) ListVersions(ctx context.Context, contractID engine.ContractID) ([]contract.ContractVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_json FROM contract_versions WHERE contract_id = ? ORDER BY valid_from ASC",
		contractID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []contract.ContractVersion
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		v, err := s.factory.ParseContractVersion(doc)
		if err != nil {
			return nil, fmt.Errorf("stored version %s is corrupt: %w", id, err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// VersionsCovering returns the versions of a contract whose validity window
// contains the given date. This feeds contract.ResolveVersion.
func (s *Store) VersionsCovering(ctx context.Context, contractID engine.ContractID, onDate engine.Date) ([]contract.ContractVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Half-open window: valid_from <= date < valid_to. ISO dates compare
	// correctly as strings.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_json FROM contract_versions
		 WHERE contract_id = ? AND valid_from <= ? AND valid_to > ?
		 ORDER BY valid_from ASC`,
		contractID, onDate.String(), onDate.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []contract.ContractVersion
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		v, err := s.factory.ParseContractVersion(doc)
		if err != nil {
			return nil, fmt.Errorf("stored version %s is corrupt: %w", id, err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// DeleteVersion removes a version.
func (s *Store) DeleteVersion(ctx context.Context, id engine.VersionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM contract_versions WHERE id = ?", id)
	return err
}

// =============================================================================
// SELLING RATES
// =============================================================================

// SaveRate validates and persists a selling rate. An empty ID gets a
// generated one; the saved rate is returned.
func (s *Store) SaveRate(ctx context.Context, r rates.SellingRate) (rates.SellingRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = engine.RateID(uuid.NewString())
	}
	if err := r.Validity().Validate(); err != nil {
		return rates.SellingRate{}, err
	}

	doc, err := json.Marshal(s.factory.ToRateJSON(r))
	if err != nil {
		return rates.SellingRate{}, fmt.Errorf("failed to serialize rate: %w", err)
	}

	query := `
		INSERT INTO selling_rates
		(id, product_option_id, valid_from, valid_to, currency, is_active, document_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_option_id = excluded.product_option_id,
			valid_from = excluded.valid_from,
			valid_to = excluded.valid_to,
			currency = excluded.currency,
			is_active = excluded.is_active,
			document_json = excluded.document_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.ProductOptionID,
		r.ValidFrom.String(), r.ValidTo.String(),
		r.Currency, r.IsActive,
		string(doc), now, now,
	)
	if err != nil {
		return rates.SellingRate{}, fmt.Errorf("failed to save rate: %w", err)
	}
	return r, nil
}

// GetRate retrieves a rate by ID. Returns nil when absent.
func (s *Store) GetRate(ctx context.Context, id engine.RateID) (*rates.SellingRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document_json FROM selling_rates WHERE id = ?", id,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r, err := s.factory.ParseSellingRate(doc)
	if err != nil {
		return nil, fmt.Errorf("stored rate %s is corrupt: %w", id, err)
	}
	return &r, nil
}

// ListRates returns the rates for a product option, oldest validity first.
// An empty product option ID lists every rate.
func (s *Store) ListRates(ctx context.Context, productOptionID engine.ProductOptionID) ([]rates.SellingRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rows *sql.Rows
		err  error
	)
	if productOptionID == "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, document_json FROM selling_rates ORDER BY product_option_id, valid_from ASC")
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, document_json FROM selling_rates WHERE product_option_id = ? ORDER BY valid_from ASC",
			productOptionID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanRates(rows)
}

// RatesCovering returns the active rates for a product option whose validity
// window contains the whole stay.
func (s *Store) RatesCovering(ctx context.Context, productOptionID engine.ProductOptionID, stay engine.DateRange) ([]rates.SellingRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The stay [From, To) fits inside [valid_from, valid_to) when
	// valid_from <= From and To <= valid_to.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_json FROM selling_rates
		 WHERE product_option_id = ? AND is_active = TRUE
		   AND valid_from <= ? AND valid_to >= ?
		 ORDER BY valid_from ASC`,
		productOptionID, stay.From.String(), stay.To.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanRates(rows)
}

func (s *Store) scanRates(rows *sql.Rows) ([]rates.SellingRate, error) {
	var result []rates.SellingRate
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		r, err := s.factory.ParseSellingRate(doc)
		if err != nil {
			return nil, fmt.Errorf("stored rate %s is corrupt: %w", id, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteRate removes a rate.
func (s *Store) DeleteRate(ctx context.Context, id engine.RateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM selling_rates WHERE id = ?", id)
	return err
}

// SetRateActive flips a rate's active flag without rewriting the document.
func (s *Store) SetRateActive(ctx context.Context, id engine.RateID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.rateDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("rate %s not found", id)
	}

	var rj factory.SellingRateJSON
	if err := json.Unmarshal(doc, &rj); err != nil {
		return fmt.Errorf("stored rate %s is corrupt: %w", id, err)
	}
	rj.IsActive = active
	updated, err := json.Marshal(rj)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE selling_rates SET is_active = ?, document_json = ?, updated_at = ? WHERE id = ?",
		active, string(updated), time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

func (s *Store) rateDocument(ctx context.Context, id engine.RateID) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document_json FROM selling_rates WHERE id = ?", id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"contract_versions", "selling_rates", "contracts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
