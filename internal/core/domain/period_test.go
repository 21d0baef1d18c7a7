package domain_test

import (
	"testing"
	"time"

	"github.com/hostelhq/housing_ledger_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Period
		wantErr bool
	}{
		{name: "valid period", input: "2025-03", want: domain.Period{Year: 2025, Month: time.March}},
		{name: "december", input: "2024-12", want: domain.Period{Year: 2024, Month: time.December}},
		{name: "missing month", input: "2025", wantErr: true},
		{name: "month out of range", input: "2025-13", wantErr: true},
		{name: "full date rejected", input: "2025-03-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParsePeriod(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_Next(t *testing.T) {
	assert.Equal(t, domain.Period{Year: 2025, Month: time.April}, domain.Period{Year: 2025, Month: time.March}.Next())
	assert.Equal(t, domain.Period{Year: 2026, Month: time.January}, domain.Period{Year: 2025, Month: time.December}.Next())
}

func TestPeriod_Before(t *testing.T) {
	jan := domain.Period{Year: 2025, Month: time.January}
	feb := domain.Period{Year: 2025, Month: time.February}
	decPrev := domain.Period{Year: 2024, Month: time.December}

	assert.True(t, jan.Before(feb))
	assert.False(t, feb.Before(jan))
	assert.True(t, decPrev.Before(jan))
	assert.False(t, jan.Before(jan))
}

func TestPeriod_StartAndEnd(t *testing.T) {
	p := domain.Period{Year: 2025, Month: time.February}
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start())

	// End is the last instant before March begins.
	assert.True(t, p.End().Before(p.Next().Start()))
	assert.Equal(t, time.February, p.End().Month())
	assert.Equal(t, 28, p.End().Day())
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2025-03", domain.Period{Year: 2025, Month: time.March}.String())
	assert.Equal(t, "2024-12", domain.Period{Year: 2024, Month: time.December}.String())
}

func TestPeriodOf(t *testing.T) {
	p := domain.PeriodOf(time.Date(2025, time.July, 18, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, domain.Period{Year: 2025, Month: time.July}, p)
	assert.False(t, p.IsZero())
	assert.True(t, domain.Period{}.IsZero())
}
