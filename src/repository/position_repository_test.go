package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signalengine/src/model"
)

func TestPositionRepository_ArrivalOrder(t *testing.T) {
	repo := NewPositionRepository()
	a := &model.Position{ID: "a", Symbol: "BTCUSDT"}
	b := &model.Position{ID: "b", Symbol: "ETHUSDT"}
	c := &model.Position{ID: "c", Symbol: "BTCUSDT"}
	repo.Add(a)
	repo.Add(b)
	repo.Add(c)

	assert.Equal(t, []*model.Position{a, b, c}, repo.All())
	assert.Equal(t, []*model.Position{a, c}, repo.BySymbol("BTCUSDT"))
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, repo.Symbols())

	assert.True(t, repo.Remove("b"))
	assert.False(t, repo.Remove("b"))
	assert.Equal(t, 2, repo.Len())

	got, ok := repo.Get("c")
	assert.True(t, ok)
	assert.Same(t, c, got)

	_, ok = repo.Get("b")
	assert.False(t, ok)
}
