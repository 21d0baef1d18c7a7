package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/hostelhq/housing_ledger_app/internal/models"
)

// ToModelEntry converts a domain LedgerEntry to its header and line rows.
func ToModelEntry(d domain.LedgerEntry) (models.LedgerEntry, []models.LedgerLine, error) {
	var extra []byte
	if len(d.Metadata.Extra) > 0 {
		encoded, err := json.Marshal(d.Metadata.Extra)
		if err != nil {
			return models.LedgerEntry{}, nil, fmt.Errorf("failed to encode entry extra metadata: %w", err)
		}
		extra = encoded
	}

	header := models.LedgerEntry{
		EntryID:     d.EntryID,
		Sequence:    d.Sequence,
		EntryDate:   d.Date,
		Description: d.Description,
		SourceKind:  string(d.SourceKind),
		SourceRef:   d.SourceRef,
		DebtorID:    d.Metadata.DebtorID,
		ResidenceID: d.Metadata.ResidenceID,
		Period:      periodToString(d.Metadata.Period),
		Category:    string(d.Metadata.Category),
		Extra:       extra,
		CreatedAt:   d.CreatedAt,
	}

	lines := make([]models.LedgerLine, len(d.Lines))
	for i, line := range d.Lines {
		lines[i] = models.LedgerLine{
			EntryID:     d.EntryID,
			LineNo:      i,
			AccountCode: line.AccountCode,
			AccountType: string(line.AccountType),
			Debit:       line.Debit,
			Credit:      line.Credit,
			Category:    string(line.Category),
			Period:      periodToString(line.Period),
		}
	}
	return header, lines, nil
}

// ToDomainEntry converts header and line rows back into a domain LedgerEntry.
// Lines must already be ordered by line number.
func ToDomainEntry(m models.LedgerEntry, lines []models.LedgerLine) (domain.LedgerEntry, error) {
	metaPeriod, err := periodFromString(m.Period)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("entry %s has invalid period: %w", m.EntryID, err)
	}

	var extra map[string]string
	if len(m.Extra) > 0 {
		if err := json.Unmarshal(m.Extra, &extra); err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("entry %s has invalid extra metadata: %w", m.EntryID, err)
		}
	}

	entry := domain.LedgerEntry{
		EntryID:     m.EntryID,
		Sequence:    m.Sequence,
		Date:        m.EntryDate,
		Description: m.Description,
		SourceKind:  domain.SourceKind(m.SourceKind),
		SourceRef:   m.SourceRef,
		Metadata: domain.EntryMetadata{
			DebtorID:    m.DebtorID,
			ResidenceID: m.ResidenceID,
			Period:      metaPeriod,
			Category:    domain.Category(m.Category),
			Extra:       extra,
		},
		CreatedAt: m.CreatedAt,
		Lines:     make([]domain.LedgerLine, len(lines)),
	}

	for i, line := range lines {
		linePeriod, err := periodFromString(line.Period)
		if err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("entry %s line %d has invalid period: %w", m.EntryID, line.LineNo, err)
		}
		entry.Lines[i] = domain.LedgerLine{
			AccountCode: line.AccountCode,
			AccountType: domain.AccountType(line.AccountType),
			Debit:       line.Debit,
			Credit:      line.Credit,
			Category:    domain.Category(line.Category),
			Period:      linePeriod,
		}
	}
	return entry, nil
}

func periodToString(p domain.Period) string {
	if p.IsZero() {
		return ""
	}
	return p.String()
}

func periodFromString(s string) (domain.Period, error) {
	if s == "" {
		return domain.Period{}, nil
	}
	return domain.ParsePeriod(s)
}
