// MockEntityProvider 是实体查询的测试模拟实现。
//
// 支持预置品牌/产品/代言人以及错误注入。
package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BaSui01/creativeflow/types"
)

// ErrEntityNotFound 在实体未预置时返回
var ErrEntityNotFound = errors.New("entity not found")

// MockEntityProvider 按 ID 返回预置实体
type MockEntityProvider struct {
	mu sync.RWMutex

	brands   map[string]*types.Brand
	products map[string]*types.Product
	talents  map[string]*types.Talent
	err      error

	calls []string
}

// NewMockEntityProvider 创建空的实体模拟
func NewMockEntityProvider() *MockEntityProvider {
	return &MockEntityProvider{
		brands:   make(map[string]*types.Brand),
		products: make(map[string]*types.Product),
		talents:  make(map[string]*types.Talent),
	}
}

// WithBrand 预置品牌
func (m *MockEntityProvider) WithBrand(b *types.Brand) *MockEntityProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brands[b.ID] = b
	return m
}

// WithProduct 预置产品
func (m *MockEntityProvider) WithProduct(p *types.Product) *MockEntityProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return m
}

// WithTalent 预置代言人
func (m *MockEntityProvider) WithTalent(t *types.Talent) *MockEntityProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.talents[t.ID] = t
	return m
}

// WithError 使所有查询返回 err
func (m *MockEntityProvider) WithError(err error) *MockEntityProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockEntityProvider) Brand(_ context.Context, id string) (*types.Brand, error) {
	return lookup(m, "brand:"+id, m.brands, id)
}

func (m *MockEntityProvider) Product(_ context.Context, id string) (*types.Product, error) {
	return lookup(m, "product:"+id, m.products, id)
}

func (m *MockEntityProvider) Talent(_ context.Context, id string) (*types.Talent, error) {
	return lookup(m, "talent:"+id, m.talents, id)
}

// Calls 返回按顺序记录的查询，形如 "brand:id"
func (m *MockEntityProvider) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}

func lookup[T any](m *MockEntityProvider, call string, from map[string]*T, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	if m.err != nil {
		return nil, m.err
	}
	v, ok := from[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", call, ErrEntityNotFound)
	}
	return v, nil
}
