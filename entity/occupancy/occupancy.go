package occupancy

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

// Cell 网格坐标
type Cell struct {
	Row int32
	Col int32
}

func (c Cell) String() string {
	return fmt.Sprintf("Cell(%d, %d)", c.Row, c.Col)
}

type occupant struct {
	v   entity.IVehicle
	pos entity.Position // 占用时登记的位置
}

// Occupancy 空间占用网格
// 功能：记录每个网格中的车辆及其位置，按3x3邻域判断两车间距
// 说明：同一网格可以容纳多辆车，是否冲突只由车辆中心距离决定；
// 每辆车同一时刻至多出现在一个网格中
type Occupancy struct {
	cellSize     float64
	separationSq float64

	cells map[Cell]map[int32]occupant // 网格->车辆ID->占用
	byID  map[int32]Cell              // 车辆ID->所在网格
}

// New 创建空间占用网格
// 参数：cellSize-网格边长，separationSq-两车中心最小允许距离的平方
// 说明：cellSize必须不小于最小允许距离，否则3x3邻域扫描会漏判
func New(cellSize, separationSq float64) *Occupancy {
	if cellSize <= 0 || cellSize*cellSize < separationSq {
		log.Panicf("cell size %v cannot cover separation %v", cellSize, math.Sqrt(separationSq))
	}
	return &Occupancy{
		cellSize:     cellSize,
		separationSq: separationSq,
		cells:        make(map[Cell]map[int32]occupant),
		byID:         make(map[int32]Cell),
	}
}

// CellOf 计算坐标所在网格
func (o *Occupancy) CellOf(pos entity.Position) Cell {
	return Cell{
		Row: int32(math.Floor(pos.Row / o.cellSize)),
		Col: int32(math.Floor(pos.Col / o.cellSize)),
	}
}

// Release 释放车辆在pos所在网格中的占用
// 说明：车辆不在该网格中说明占用记录与车辆位置不一致，直接panic
func (o *Occupancy) Release(pos entity.Position, v entity.IVehicle) {
	cell := o.CellOf(pos)
	occupants, ok := o.cells[cell]
	if !ok {
		log.Panicf("release %v at %v: %v is empty", v, pos, cell)
	}
	if _, ok := occupants[v.ID()]; !ok {
		log.Panicf("release %v at %v: not found in %v", v, pos, cell)
	}
	delete(occupants, v.ID())
	if len(occupants) == 0 {
		delete(o.cells, cell)
	}
	delete(o.byID, v.ID())
}

// TryClaim 尝试让车辆占用pos
// 功能：检查pos周围的车辆间距，满足要求时登记占用
// 参数：pos-目标位置，v-车辆
// 返回：是否占用成功，失败时网格不做任何修改
// 算法说明：
// 1. 取pos所在网格及其周围共9个网格
// 2. 跳过v自身，其余车辆与pos的距离平方小于最小间距平方即失败
// 3. 全部通过后把v登记到pos所在网格
func (o *Occupancy) TryClaim(pos entity.Position, v entity.IVehicle) bool {
	if cell, ok := o.byID[v.ID()]; ok {
		log.Panicf("claim %v at %v: still holds %v", v, pos, cell)
	}
	center := o.CellOf(pos)
	for dr := int32(-1); dr <= 1; dr++ {
		for dc := int32(-1); dc <= 1; dc++ {
			for id, other := range o.cells[Cell{Row: center.Row + dr, Col: center.Col + dc}] {
				if id == v.ID() {
					continue
				}
				if pos.DistanceSq(other.pos) < o.separationSq {
					return false
				}
			}
		}
	}
	occupants, ok := o.cells[center]
	if !ok {
		occupants = make(map[int32]occupant)
		o.cells[center] = occupants
	}
	occupants[v.ID()] = occupant{v: v, pos: pos}
	o.byID[v.ID()] = center
	return true
}

// Locate 获取车辆当前所在网格
func (o *Occupancy) Locate(id int32) (Cell, bool) {
	cell, ok := o.byID[id]
	return cell, ok
}

// Len 已登记的车辆数
func (o *Occupancy) Len() int {
	return len(o.byID)
}
