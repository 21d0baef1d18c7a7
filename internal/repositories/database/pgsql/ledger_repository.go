package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelhq/housing_ledger_app/internal/apperrors"
	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	"github.com/hostelhq/housing_ledger_app/internal/models"
	"github.com/hostelhq/housing_ledger_app/internal/utils/mapping"
)

const entryColumns = `entry_id, sequence, entry_date, description, source_kind, COALESCE(source_ref, ''),
	COALESCE(debtor_id, ''), COALESCE(residence_id, ''), COALESCE(period, ''), COALESCE(category, ''), extra, created_at`

const lineColumns = `entry_id, line_no, account_code, account_type, debit, credit,
	COALESCE(category, ''), COALESCE(period, '')`

type PgxLedgerRepository struct {
	BaseRepository
	chartRepo portsrepo.ChartOfAccountsReader
}

// newPgxLedgerRepository creates a new repository for the append-only ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool, chartRepo portsrepo.ChartOfAccountsReader) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		chartRepo:      chartRepo,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// AppendEntry validates and appends one entry with its lines in a single
// database transaction. There is no update path; the tables only ever grow.
func (r *PgxLedgerRepository) AppendEntry(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	if err := entry.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	codes := entry.AccountCodes()
	known, err := r.chartRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return "", fmt.Errorf("failed to resolve entry accounts: %w", err)
	}
	for _, code := range codes {
		if _, ok := known[code]; !ok {
			return "", fmt.Errorf("account %s: %w", code, apperrors.ErrUnknownAccount)
		}
	}

	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()

	header, lines, err := mapping.ToModelEntry(entry)
	if err != nil {
		return "", err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	entryQuery := `
		INSERT INTO ledger_entries (
			entry_id, entry_date, description, source_kind, source_ref,
			debtor_id, residence_id, period, category, extra, created_at
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11)
		RETURNING sequence;
	`
	err = tx.QueryRow(ctx, entryQuery,
		header.EntryID,
		header.EntryDate,
		header.Description,
		header.SourceKind,
		header.SourceRef,
		header.DebtorID,
		header.ResidenceID,
		header.Period,
		header.Category,
		header.Extra,
		header.CreatedAt,
	).Scan(&header.Sequence)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_ledger_entries_source_ref" { // unique_violation
			return "", fmt.Errorf("source reference %s: %w", entry.SourceRef, apperrors.ErrDuplicateSourceRef)
		}
		return "", fmt.Errorf("failed to insert ledger entry %s: %w", header.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO ledger_lines (entry_id, line_no, account_code, account_type, debit, credit, category, period)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''));
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.EntryID,
			line.LineNo,
			line.AccountCode,
			line.AccountType,
			line.Debit,
			line.Credit,
			line.Category,
			line.Period,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return "", fmt.Errorf("failed to insert ledger lines for entry %s: %w", header.EntryID, err)
		}
	}
	if err := results.Close(); err != nil {
		return "", fmt.Errorf("failed to close line batch for entry %s: %w", header.EntryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return header.EntryID, nil
}

// FindEntryByID retrieves a single entry with its lines.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`
	return r.findOne(ctx, query, entryID)
}

// FindEntryBySourceRef retrieves the entry recorded for a source reference.
func (r *PgxLedgerRepository) FindEntryBySourceRef(ctx context.Context, sourceRef string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE source_ref = $1;`
	return r.findOne(ctx, query, sourceRef)
}

func (r *PgxLedgerRepository) findOne(ctx context.Context, query, arg string) (*domain.LedgerEntry, error) {
	var header models.LedgerEntry
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&header.EntryID, &header.Sequence, &header.EntryDate, &header.Description,
		&header.SourceKind, &header.SourceRef, &header.DebtorID, &header.ResidenceID,
		&header.Period, &header.Category, &header.Extra, &header.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry: %w", err)
	}

	linesByEntry, err := r.fetchLines(ctx, []string{header.EntryID})
	if err != nil {
		return nil, err
	}
	entry, err := mapping.ToDomainEntry(header, linesByEntry[header.EntryID])
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// QueryEntries returns entries matching the filter ordered by date ascending,
// then by append sequence.
func (r *PgxLedgerRepository) QueryEntries(ctx context.Context, filter portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries`
	var conditions []string
	var args []any

	addArg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.From != nil {
		conditions = append(conditions, "entry_date >= "+addArg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "entry_date <= "+addArg(*filter.To))
	}
	if len(filter.SourceKinds) > 0 {
		kinds := make([]string, len(filter.SourceKinds))
		for i, kind := range filter.SourceKinds {
			kinds[i] = string(kind)
		}
		conditions = append(conditions, "source_kind = ANY("+addArg(kinds)+")")
	}
	if filter.DebtorID != "" {
		conditions = append(conditions, "debtor_id = "+addArg(filter.DebtorID))
	}
	if filter.ResidenceID != "" {
		conditions = append(conditions, "residence_id = "+addArg(filter.ResidenceID))
	}
	if filter.AccountCode != "" {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM ledger_lines l WHERE l.entry_id = ledger_entries.entry_id AND l.account_code = "+addArg(filter.AccountCode)+")")
	}

	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}
	query += " ORDER BY entry_date ASC, sequence ASC;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var headers []models.LedgerEntry
	for rows.Next() {
		var header models.LedgerEntry
		if err := rows.Scan(
			&header.EntryID, &header.Sequence, &header.EntryDate, &header.Description,
			&header.SourceKind, &header.SourceRef, &header.DebtorID, &header.ResidenceID,
			&header.Period, &header.Category, &header.Extra, &header.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		headers = append(headers, header)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger entry rows: %w", err)
	}
	if len(headers) == 0 {
		return nil, nil
	}

	entryIDs := make([]string, len(headers))
	for i, header := range headers {
		entryIDs[i] = header.EntryID
	}
	linesByEntry, err := r.fetchLines(ctx, entryIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, len(headers))
	for i, header := range headers {
		entry, err := mapping.ToDomainEntry(header, linesByEntry[header.EntryID])
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// fetchLines loads the lines for a set of entries, grouped by entry id and
// ordered by line number within each entry.
func (r *PgxLedgerRepository) fetchLines(ctx context.Context, entryIDs []string) (map[string][]models.LedgerLine, error) {
	query := `SELECT ` + lineColumns + ` FROM ledger_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_no;`

	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger lines: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.LedgerLine, len(entryIDs))
	for rows.Next() {
		var line models.LedgerLine
		if err := rows.Scan(
			&line.EntryID, &line.LineNo, &line.AccountCode, &line.AccountType,
			&line.Debit, &line.Credit, &line.Category, &line.Period,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line row: %w", err)
		}
		result[line.EntryID] = append(result[line.EntryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger line rows: %w", err)
	}
	return result, nil
}
