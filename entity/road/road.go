package road

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

var (
	ErrDegenerateRoad = errors.New("road endpoints coincide")
	ErrDiagonalRoad   = errors.New("road is not axis-aligned")
)

// Road 道路，轴对齐的线段
// 功能：记录道路两端点与轴向，计算与其他道路的交点
// 说明：构造时端点已规范化为沿轴向from<=to，因此反向给出的同一线段视为同一道路
type Road struct {
	id   int32
	from entity.Position
	to   entity.Position
	axis entity.Axis
}

// New 创建道路
// 功能：校验两个端点并创建道路
// 参数：from,to-两端点
// 返回：道路；两端点重合或不在同一行/列上时返回错误
func New(from, to entity.Position) (*Road, error) {
	sameRow := from.Row == to.Row
	sameCol := from.Col == to.Col
	switch {
	case sameRow && sameCol:
		return nil, fmt.Errorf("%w: %v", ErrDegenerateRoad, from)
	case sameRow:
		if from.Col > to.Col {
			from, to = to, from
		}
		return &Road{id: -1, from: from, to: to, axis: entity.AxisHorizontal}, nil
	case sameCol:
		if from.Row > to.Row {
			from, to = to, from
		}
		return &Road{id: -1, from: from, to: to, axis: entity.AxisVertical}, nil
	default:
		return nil, fmt.Errorf("%w: %v -> %v", ErrDiagonalRoad, from, to)
	}
}

func (r *Road) String() string {
	return fmt.Sprintf("Road{%d %v %v->%v}", r.id, r.axis, r.from, r.to)
}

// ID 获取道路ID，未加入路网时为-1
func (r *Road) ID() int32 {
	return r.id
}

func (r *Road) From() entity.Position {
	return r.from
}

func (r *Road) To() entity.Position {
	return r.to
}

// Axis 获取道路轴向
func (r *Road) Axis() entity.Axis {
	return r.axis
}

// Length 获取道路长度
func (r *Road) Length() float64 {
	return math.Abs(r.to.Row-r.from.Row) + math.Abs(r.to.Col-r.from.Col)
}

// PositionAt 按比例ratio∈[0,1]取道路上的点
func (r *Road) PositionAt(ratio float64) entity.Position {
	return r.from.Add(r.to.Sub(r.from).Scale(ratio))
}

// Same 两条道路端点完全相同
func (r *Road) Same(other *Road) bool {
	return r.from == other.from && r.to == other.to
}

// Intersects 计算与另一条道路的交点
// 功能：仅对一条水平道路与一条竖直道路定义交点
// 参数：other-另一条道路
// 返回：交点坐标与是否相交
// 算法说明：
// 1. 同轴向道路没有交点
// 2. 交点为(水平道路的行, 竖直道路的列)
// 3. 交点需同时落在两条线段的范围内（含端点）
func (r *Road) Intersects(other *Road) (entity.Position, bool) {
	if r.axis == other.axis {
		return entity.Position{}, false
	}
	h, v := r, other
	if h.axis != entity.AxisHorizontal {
		h, v = v, h
	}
	p := entity.Position{Row: h.from.Row, Col: v.from.Col}
	if p.Col < h.from.Col || p.Col > h.to.Col {
		return entity.Position{}, false
	}
	if p.Row < v.from.Row || p.Row > v.to.Row {
		return entity.Position{}, false
	}
	return p, true
}
