package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/payroll"
	"github.com/warp/deduction-engine/store/memory"
)

func testConfig(id, name string) deduction.Config {
	return deduction.Config{
		ID:          deduction.ConfigID(id),
		Name:        name,
		EarningType: deduction.GrossEarnings,
		HasBands:    true,
		Bands: []deduction.Band{
			{ID: "b1", Min: decimal.Zero, Max: deduction.DecimalFromFloat(1000), Percentage: decimal.NewFromInt(10)},
			{ID: "b2", Min: decimal.NewFromInt(1000), Percentage: decimal.NewFromInt(20)},
		},
		PaidBy: deduction.PaidBy{Employee: decimal.NewFromInt(100)},
		Limits: deduction.Limits{Type: deduction.LimitOnEarning, Upper: deduction.DecimalFromFloat(5000)},
	}
}

func TestStore_SaveGetVersion(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.SaveConfig(ctx, testConfig("paye", "PAYE")))
	got, err := s.GetConfig(ctx, "paye")
	require.NoError(t, err)
	assert.Equal(t, "PAYE", got.Name)
	assert.Equal(t, 1, got.Version)

	require.NoError(t, s.SaveConfig(ctx, testConfig("paye", "PAYE 2025")))
	got, err = s.GetConfig(ctx, "paye")
	require.NoError(t, err)
	assert.Equal(t, "PAYE 2025", got.Name)
	assert.Equal(t, 2, got.Version)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	cfg := testConfig("paye", "PAYE")
	require.NoError(t, s.SaveConfig(ctx, cfg))

	// Mutating the caller's copy after save must not leak into the store.
	*cfg.Bands[0].Max = decimal.NewFromInt(1)
	cfg.Bands[1].Percentage = decimal.NewFromInt(99)

	got, err := s.GetConfig(ctx, "paye")
	require.NoError(t, err)
	assert.True(t, got.Bands[0].Max.Equal(decimal.NewFromInt(1000)))
	assert.True(t, got.Bands[1].Percentage.Equal(decimal.NewFromInt(20)))

	// Nor must mutating a returned copy.
	*got.Limits.Upper = decimal.Zero
	again, err := s.GetConfig(ctx, "paye")
	require.NoError(t, err)
	assert.True(t, again.Limits.Upper.Equal(decimal.NewFromInt(5000)))
}

func TestStore_ListOrderedByName(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.SaveConfig(ctx, testConfig("c", "NSSF")))
	require.NoError(t, s.SaveConfig(ctx, testConfig("b", "Housing Levy")))
	require.NoError(t, s.SaveConfig(ctx, testConfig("a", "PAYE")))

	list, err := s.ListConfigs(ctx)
	require.NoError(t, err)

	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Housing Levy", "NSSF", "PAYE"}, names)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.GetConfig(ctx, "missing")
	assert.True(t, deduction.IsNotFound(err))

	err = s.DeleteConfig(ctx, "missing")
	assert.ErrorIs(t, err, deduction.ErrConfigNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.SaveConfig(ctx, testConfig("paye", "PAYE")))

	require.NoError(t, s.DeleteConfig(ctx, "paye"))

	_, err := s.GetConfig(ctx, "paye")
	assert.True(t, deduction.IsNotFound(err))
}

func TestStore_RejectsMissingID(t *testing.T) {
	err := memory.New().SaveConfig(context.Background(), testConfig("", "PAYE"))
	assert.ErrorIs(t, err, deduction.ErrInvalidConfig)
}

func TestLookup_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.SaveConfig(ctx, testConfig("a", "A")))
	require.NoError(t, s.SaveConfig(ctx, testConfig("b", "B")))

	got, err := deduction.Lookup(ctx, s, []deduction.ConfigID{"b", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, deduction.ConfigID("b"), got[0].ID)
	assert.Equal(t, deduction.ConfigID("a"), got[1].ID)

	_, err = deduction.Lookup(ctx, s, []deduction.ConfigID{"a", "zzz"})
	assert.True(t, deduction.IsNotFound(err))
}

func TestStore_Employees(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	emp := payroll.Employee{
		ID:   "emp-1",
		Name: "Amina",
		Earnings: deduction.Snapshot{
			BasicPay:   decimal.NewFromInt(40000),
			Allowances: map[string]decimal.Decimal{"Housing": decimal.NewFromInt(8000)},
		},
	}
	require.NoError(t, s.SaveEmployee(ctx, emp))

	// Mutating the caller's map after save must not leak into the store.
	emp.Earnings.Allowances["Housing"] = decimal.Zero

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.Earnings.Allowances["Housing"].Equal(decimal.NewFromInt(8000)))

	list, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteEmployee(ctx, "emp-1"))
	_, err = s.GetEmployee(ctx, "emp-1")
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	err = s.SaveEmployee(ctx, payroll.Employee{Name: "No ID"})
	assert.ErrorIs(t, err, payroll.ErrInvalidEmployee)
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	emp := payroll.Employee{ID: "e", Name: "E", Earnings: deduction.Snapshot{BasicPay: decimal.NewFromInt(1000)}}
	runner := payroll.NewRunner(1, nil)

	var ids []string
	for range 3 {
		run, err := runner.Run(ctx, payroll.RunInput{
			Employees: []payroll.Employee{emp},
			Configs:   []deduction.Config{testConfig("paye", "PAYE")},
		})
		require.NoError(t, err)
		require.NoError(t, s.SaveRun(ctx, run))
		ids = append(ids, run.ID)
	}

	got, err := s.GetRun(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
	assert.Error(t, s.SaveRun(ctx, got))

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Nil(t, runs[0].Results)

	_, err = s.GetRun(ctx, "missing")
	assert.True(t, payroll.IsNotFound(err))
}
