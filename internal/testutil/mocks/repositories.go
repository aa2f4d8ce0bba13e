// Package mocks provides testify/mock implementations of the core engine's
// collaborator interfaces for testing. These mocks use testify/mock and can
// be used across all test packages, alongside the hand-written fakes that
// narrower interfaces use instead.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// MockCurveRepository is a mock implementation of interfaces.CurveRepository.
type MockCurveRepository struct {
	mock.Mock
}

func (m *MockCurveRepository) Create(ctx context.Context, cfg curve.CurveConfig) (string, error) {
	args := m.Called(ctx, cfg)
	return args.String(0), args.Error(1)
}

func (m *MockCurveRepository) Load(ctx context.Context, curveID string) (curve.CurveConfig, curve.State, error) {
	args := m.Called(ctx, curveID)
	cfg, _ := args.Get(0).(curve.CurveConfig)
	state, _ := args.Get(1).(curve.State)
	return cfg, state, args.Error(2)
}

func (m *MockCurveRepository) Save(ctx context.Context, curveID string, state curve.State) error {
	args := m.Called(ctx, curveID, state)
	return args.Error(0)
}

// MockAssetTransfer is a mock implementation of collaborators.AssetTransfer.
type MockAssetTransfer struct {
	mock.Mock
}

func (m *MockAssetTransfer) Credit(ctx context.Context, account, assetID string, amount fixedpoint.Uint128) error {
	args := m.Called(ctx, account, assetID, amount)
	return args.Error(0)
}

func (m *MockAssetTransfer) Debit(ctx context.Context, account, assetID string, amount fixedpoint.Uint128) error {
	args := m.Called(ctx, account, assetID, amount)
	return args.Error(0)
}

// MockPoolMigration is a mock implementation of collaborators.PoolMigration.
type MockPoolMigration struct {
	mock.Mock
}

func (m *MockPoolMigration) Accept(ctx context.Context, curveID string, intent curve.MigrationIntent) error {
	args := m.Called(ctx, curveID, intent)
	return args.Error(0)
}
