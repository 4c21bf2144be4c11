package occupancy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/occupancy"
)

// 只提供ID的车辆
type stubVehicle struct {
	id int32
}

func (v stubVehicle) ID() int32                      { return v.id }
func (v stubVehicle) Origin() entity.Position        { return entity.Position{} }
func (v stubVehicle) Position() entity.Position      { return entity.Position{} }
func (v stubVehicle) Direction() entity.Direction    { return entity.DirectionUp }
func (v stubVehicle) Speed() float64                 { return 0 }
func (v stubVehicle) State() entity.VehicleState     { return entity.StateMoving }
func (v stubVehicle) Intersection() entity.IJunction { return nil }
func (v stubVehicle) Enter(entity.IJunction)         {}
func (v stubVehicle) UnblockFromIntersection()       {}
func (v stubVehicle) String() string                 { return fmt.Sprintf("stub%d", v.id) }

const separationSq = 12. * 12.

func pos(row, col float64) entity.Position {
	return entity.Position{Row: row, Col: col}
}

func TestCellOf(t *testing.T) {
	o := occupancy.New(20, separationSq)
	assert.Equal(t, occupancy.Cell{Row: 40, Col: 20}, o.CellOf(pos(800, 400)))
	assert.Equal(t, occupancy.Cell{Row: 0, Col: 0}, o.CellOf(pos(19.99, 0)))
	assert.Equal(t, occupancy.Cell{Row: -1, Col: 1}, o.CellOf(pos(-0.5, 20)))
}

func TestClaimRelease(t *testing.T) {
	o := occupancy.New(20, separationSq)
	a, b := stubVehicle{1}, stubVehicle{2}

	assert.True(t, o.TryClaim(pos(100, 100), a))
	cell, ok := o.Locate(1)
	assert.True(t, ok)
	assert.Equal(t, o.CellOf(pos(100, 100)), cell)

	// 同一网格内相距足够远可以共存
	assert.True(t, o.TryClaim(pos(100, 115), b))
	assert.Equal(t, 2, o.Len())

	o.Release(pos(100, 115), b)
	_, ok = o.Locate(2)
	assert.False(t, ok)
	assert.Equal(t, 1, o.Len())
}

func TestClaimRejectsAcrossCells(t *testing.T) {
	o := occupancy.New(20, separationSq)
	a, b := stubVehicle{1}, stubVehicle{2}
	assert.True(t, o.TryClaim(pos(39, 39), a))

	// 位于相邻网格但距离不足
	assert.False(t, o.TryClaim(pos(41, 41), b))
	_, ok := o.Locate(2)
	assert.False(t, ok)
	assert.Equal(t, 1, o.Len())

	// 距离恰好等于最小间距时允许
	assert.True(t, o.TryClaim(pos(51, 39), b))
}

func TestSelfSkipped(t *testing.T) {
	o := occupancy.New(20, separationSq)
	a := stubVehicle{1}
	assert.True(t, o.TryClaim(pos(0, 0), a))
	o.Release(pos(0, 0), a)
	assert.True(t, o.TryClaim(pos(0, 1), a))
}

func TestMisuse(t *testing.T) {
	o := occupancy.New(20, separationSq)
	a := stubVehicle{1}
	assert.Panics(t, func() { o.Release(pos(0, 0), a) })
	assert.True(t, o.TryClaim(pos(0, 0), a))
	assert.Panics(t, func() { o.TryClaim(pos(100, 100), a) })
	assert.Panics(t, func() { o.Release(pos(100, 100), a) })
	assert.Panics(t, func() { occupancy.New(10, separationSq) })
}
