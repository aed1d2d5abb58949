package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/payroll"
	"github.com/warp/deduction-engine/statutory"
	"github.com/warp/deduction-engine/store/postgres"
)

func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}

	ctx := context.Background()
	s, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgres_Configs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, cfg := range statutory.Defaults() {
		require.NoError(t, s.SaveConfig(ctx, cfg))
	}
	require.NoError(t, s.SaveConfig(ctx, statutory.Defaults()[0]))

	got, err := s.GetConfig(ctx, "paye")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Len(t, got.Bands, len(statutory.DefaultPAYEBrackets))

	list, err := s.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(statutory.Defaults()))

	require.NoError(t, s.DeleteConfig(ctx, "paye"))
	_, err = s.GetConfig(ctx, "paye")
	assert.True(t, deduction.IsNotFound(err))
}

func TestPostgres_EmployeesAndRuns(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	emp := payroll.Employee{
		ID:   "emp-1",
		Name: "Amina",
		Earnings: deduction.Snapshot{
			BasicPay:   decimal.RequireFromString("45000.10"),
			Allowances: map[string]decimal.Decimal{"Housing": decimal.NewFromInt(7500)},
		},
	}
	require.NoError(t, s.SaveEmployee(ctx, emp))

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.Earnings.BasicPay.Equal(emp.Earnings.BasicPay))

	run, err := payroll.NewRunner(2, nil).Run(ctx, payroll.RunInput{
		Employees: []payroll.Employee{got},
		Configs:   statutory.Defaults(),
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(ctx, run))
	assert.Error(t, s.SaveRun(ctx, run))

	stored, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, run.Totals.NetPay.Equal(stored.Totals.NetPay))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Results)

	_, err = s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}
