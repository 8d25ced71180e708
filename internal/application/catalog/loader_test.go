package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
)

// MockSource is a mock implementation of catalog.Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Fetch(ctx context.Context, q catalog.Query) ([]byte, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockRecorder is a mock implementation of LoadRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordCatalogLoad(ctx context.Context, productCount, warningCount int) {
	m.Called(ctx, productCount, warningCount)
}

func (m *MockRecorder) RecordCatalogLoadFailure(ctx context.Context, code string) {
	m.Called(ctx, code)
}

func seededRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	registry := catalog.NewRegistry()
	products, _ := catalog.NormalizeAll([]catalog.RawProduct{
		{"id": []byte(`"OLD"`), "nombre": []byte(`"Old"`), "precio": []byte(`1`)},
	})
	registry.Replace(products, catalog.Query{CategoryID: 1, ApprovedLine: 1})
	return registry
}

func TestLoader_Load_Scenario(t *testing.T) {
	source := new(MockSource)
	q := catalog.Query{CategoryID: 5, ApprovedLine: 2}
	source.On("Fetch", mock.Anything, q).
		Return([]byte(`[{"id":"A1","nombre":"Widget","precio":9.5}]`), nil).Once()

	loader := NewLoader(source, zap.NewNop())
	registry := catalog.NewRegistry()

	result, err := loader.Load(context.Background(), registry, q)
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	p := result.Products[0]
	assert.Equal(t, "A1", p.ID)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "9.5", p.Price.String())
	assert.Equal(t, "$9,50", p.PriceLabel)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, q, result.Query)

	found, ok := registry.Find("A1")
	require.True(t, ok)
	assert.Equal(t, "Widget", found.DisplayName)
	source.AssertExpectations(t)
}

func TestLoader_Load_ReportsWarnings(t *testing.T) {
	source := new(MockSource)
	source.On("Fetch", mock.Anything, mock.Anything).
		Return([]byte(`[{"nombre":"Sin codigo","precio":"3"}, 42]`), nil)
	recorder := new(MockRecorder)
	recorder.On("RecordCatalogLoad", mock.Anything, 2, mock.AnythingOfType("int")).Once()

	loader := NewLoader(source, nil).WithRecorder(recorder)
	result, err := loader.Load(context.Background(), catalog.NewRegistry(), catalog.Query{CategoryID: 1, ApprovedLine: 1})
	require.NoError(t, err)

	codes := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, catalog.WarnMissingID)
	assert.Contains(t, codes, catalog.WarnNotAnObject)
	assert.Equal(t, catalog.IDSourceSynthesized, result.Products[0].IDSource)
	recorder.AssertExpectations(t)
}

func TestLoader_Load_EmptyArray(t *testing.T) {
	source := new(MockSource)
	source.On("Fetch", mock.Anything, mock.Anything).Return([]byte(`[]`), nil)

	registry := seededRegistry(t)
	result, err := NewLoader(source, nil).Load(context.Background(), registry, catalog.Query{CategoryID: 2, ApprovedLine: 3})
	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.Equal(t, 0, registry.Len())
}

func TestLoader_Load_FailuresLeaveRegistryUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		fetchErr error
		wantCode string
	}{
		{name: "object instead of array", body: []byte(`{"error":"nope"}`), wantCode: shared.CodeSchema},
		{name: "garbage body", body: []byte(`<html>oops</html>`), wantCode: shared.CodeTransport},
		{name: "truncated array", body: []byte(`[{"id":"A1"`), wantCode: shared.CodeTransport},
		{name: "http status", fetchErr: catalog.NewTransportError(503), wantCode: shared.CodeTransport},
		{name: "network fault", fetchErr: catalog.WrapTransportError(errors.New("connection refused")), wantCode: shared.CodeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockSource)
			if tt.fetchErr != nil {
				source.On("Fetch", mock.Anything, mock.Anything).Return(nil, tt.fetchErr)
			} else {
				source.On("Fetch", mock.Anything, mock.Anything).Return(tt.body, nil)
			}
			recorder := new(MockRecorder)
			recorder.On("RecordCatalogLoadFailure", mock.Anything, tt.wantCode).Once()

			registry := seededRegistry(t)
			_, err := NewLoader(source, nil).WithRecorder(recorder).
				Load(context.Background(), registry, catalog.Query{CategoryID: 5, ApprovedLine: 2})

			require.Error(t, err)
			assert.ErrorIs(t, err, shared.NewDomainError(tt.wantCode, ""))
			assert.Equal(t, 1, registry.Len())
			_, ok := registry.Find("OLD")
			assert.True(t, ok)
			recorder.AssertExpectations(t)
		})
	}
}

func TestLoader_LoadRaw_ValidatesWithoutFetching(t *testing.T) {
	tests := []struct {
		name     string
		category string
		line     string
	}{
		{"empty category", "", "2"},
		{"letters", "abc", "2"},
		{"zero line", "5", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockSource)
			_, err := NewLoader(source, nil).LoadRaw(context.Background(), catalog.NewRegistry(), tt.category, tt.line)
			assert.ErrorIs(t, err, shared.ErrValidation)
			source.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
		})
	}
}

func TestLoader_LoadRaw_ParsesLeadingDigits(t *testing.T) {
	source := new(MockSource)
	source.On("Fetch", mock.Anything, catalog.Query{CategoryID: 5, ApprovedLine: 2}).Return([]byte(`[]`), nil).Once()

	_, err := NewLoader(source, nil).LoadRaw(context.Background(), catalog.NewRegistry(), "5a", " 2")
	require.NoError(t, err)
	source.AssertExpectations(t)
}

func TestLoader_View(t *testing.T) {
	loader := NewLoader(new(MockSource), nil).WithLocale("en-US")

	empty := loader.View(catalog.NewRegistry())
	assert.Nil(t, empty.Query)
	assert.Empty(t, empty.Products)

	view := loader.View(seededRegistry(t))
	require.NotNil(t, view.Query)
	assert.Equal(t, 1, view.Query.CategoryID)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "$1.00", view.Products[0].PriceLabel)
}
