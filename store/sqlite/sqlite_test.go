package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyago/tariff-engine/contract"
	"github.com/voyago/tariff-engine/engine"
	"github.com/voyago/tariff-engine/rates"
	"github.com/voyago/tariff-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testVersion(t *testing.T, id, contractID string, from, to engine.Date) contract.ContractVersion {
	t.Helper()

	free, err := contract.NewCancellationRule(30, contract.PercentPenalty(decimal.Zero), "free cancellation")
	require.NoError(t, err)
	half, err := contract.NewCancellationRule(7, contract.PercentPenalty(decimal.NewFromInt(50)), "")
	require.NoError(t, err)
	policy, err := contract.NewCancellationPolicy(contract.CancellationStandard,
		[]contract.CancellationRule{free, half}, nil, "")
	require.NoError(t, err)

	return contract.ContractVersion{
		ID:           engine.VersionID(id),
		ContractID:   engine.ContractID(contractID),
		ValidFrom:    from,
		ValidTo:      to,
		Cancellation: policy,
	}
}

// =============================================================================
// CONTRACT HEADERS
// =============================================================================

func TestContractCRUD(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	saved, err := store.SaveContract(ctx, sqlite.Contract{
		Name:         "Hotel Aurora 2024",
		SupplierName: "Aurora Hospitality",
		ProductType:  "hotel",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID, "empty ID gets generated")
	assert.Equal(t, "active", saved.Status)

	got, err := store.GetContract(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hotel Aurora 2024", got.Name)

	saved.Status = "suspended"
	_, err = store.SaveContract(ctx, saved)
	require.NoError(t, err)
	got, err = store.GetContract(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", got.Status)

	list, err := store.ListContracts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteContract(ctx, saved.ID))
	got, err = store.GetContract(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "deleted contract reads back as absent")
}

// =============================================================================
// CONTRACT VERSIONS
// =============================================================================

func TestVersionRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	version := testVersion(t, "v1", "hotel-aurora",
		engine.NewDate(2024, time.May, 1), engine.NewDate(2024, time.October, 1))
	version.Operational = contract.OperationalTerms{LeadTime: 72 * time.Hour}

	saved, err := store.SaveVersion(ctx, version)
	require.NoError(t, err)

	got, err := store.GetVersion(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, version.ValidFrom, got.ValidFrom)
	assert.Len(t, got.Cancellation.Rules, 2)
	assert.Equal(t, 72*time.Hour, got.Operational.LeadTime)
}

func TestSaveVersion_RejectsInvalid(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Inverted validity window fails validation before touching the database.
	bad := testVersion(t, "v1", "hotel-aurora",
		engine.NewDate(2024, time.October, 1), engine.NewDate(2024, time.May, 1))
	_, err := store.SaveVersion(ctx, bad)
	assert.Error(t, err)
}

func TestVersionsCovering(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	v1 := testVersion(t, "v1", "hotel-aurora",
		engine.NewDate(2024, time.January, 1), engine.NewDate(2024, time.June, 1))
	v2 := testVersion(t, "v2", "hotel-aurora",
		engine.NewDate(2024, time.June, 1), engine.NewDate(2025, time.January, 1))
	other := testVersion(t, "v3", "hotel-borealis",
		engine.NewDate(2024, time.January, 1), engine.NewDate(2025, time.January, 1))

	for _, v := range []contract.ContractVersion{v1, v2, other} {
		_, err := store.SaveVersion(ctx, v)
		require.NoError(t, err)
	}

	covering, err := store.VersionsCovering(ctx, "hotel-aurora", engine.NewDate(2024, time.March, 15))
	require.NoError(t, err)
	require.Len(t, covering, 1)
	assert.Equal(t, engine.VersionID("v1"), covering[0].ID)

	// Boundary day: v1's window is half-open so June 1 belongs to v2.
	covering, err = store.VersionsCovering(ctx, "hotel-aurora", engine.NewDate(2024, time.June, 1))
	require.NoError(t, err)
	require.Len(t, covering, 1)
	assert.Equal(t, engine.VersionID("v2"), covering[0].ID)

	// The stored candidates feed the resolver directly.
	resolved, err := contract.ResolveVersion(covering, engine.NewDate(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, engine.VersionID("v2"), resolved.ID)
}

// =============================================================================
// SELLING RATES
// =============================================================================

func testRate(id, productOption string) rates.SellingRate {
	return rates.SellingRate{
		ID:              engine.RateID(id),
		ProductOptionID: engine.ProductOptionID(productOption),
		ValidFrom:       engine.NewDate(2024, time.June, 1),
		ValidTo:         engine.NewDate(2024, time.September, 1),
		Basis:           rates.BasisPerNight,
		BasePrice:       decimal.NewFromInt(100),
		Currency:        "EUR",
		IsActive:        true,
		Pricing: rates.PricingDetails{
			DailyRates: map[string]rates.DailyRate{
				"2024-07-04": {Price: decimal.NewFromInt(250), PricingTier: "event"},
			},
			MinimumNights: 2,
		},
	}
}

func TestRateRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	saved, err := store.SaveRate(ctx, testRate("rate-1", "room-deluxe"))
	require.NoError(t, err)

	got, err := store.GetRate(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.BasePrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, got.Pricing.MinimumNights)

	override, ok := got.Pricing.DailyOverride(engine.NewDate(2024, time.July, 4))
	require.True(t, ok)
	assert.True(t, override.Price.Equal(decimal.NewFromInt(250)))
}

func TestRatesCovering_FiltersByValidityAndActive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	summer := testRate("rate-summer", "room-deluxe")

	winter := testRate("rate-winter", "room-deluxe")
	winter.ValidFrom = engine.NewDate(2024, time.November, 1)
	winter.ValidTo = engine.NewDate(2025, time.April, 1)

	inactive := testRate("rate-off", "room-deluxe")
	inactive.IsActive = false

	for _, r := range []rates.SellingRate{summer, winter, inactive} {
		_, err := store.SaveRate(ctx, r)
		require.NoError(t, err)
	}

	stay := engine.DateRange{
		From: engine.NewDate(2024, time.July, 3),
		To:   engine.NewDate(2024, time.July, 5),
	}
	covering, err := store.RatesCovering(ctx, "room-deluxe", stay)
	require.NoError(t, err)
	require.Len(t, covering, 1)
	assert.Equal(t, engine.RateID("rate-summer"), covering[0].ID)
}

func TestSetRateActive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	saved, err := store.SaveRate(ctx, testRate("rate-1", "room-deluxe"))
	require.NoError(t, err)

	require.NoError(t, store.SetRateActive(ctx, saved.ID, false))

	got, err := store.GetRate(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive, "flag must flip inside the stored document too")
}

func TestReset(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.SaveContract(ctx, sqlite.Contract{Name: "c", SupplierName: "s"})
	require.NoError(t, err)
	_, err = store.SaveRate(ctx, testRate("rate-1", "room-deluxe"))
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	contracts, err := store.ListContracts(ctx)
	require.NoError(t, err)
	assert.Empty(t, contracts)
	all, err := store.ListRates(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
