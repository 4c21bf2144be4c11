package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDirection = errors.New("unknown direction")
)

// Position 连续坐标，行向下增长、列向右增长
type Position struct {
	Row float64
	Col float64
}

func (p Position) String() string {
	return fmt.Sprintf("(%v, %v)", p.Row, p.Col)
}

// Add 返回 p + q
func (p Position) Add(q Position) Position {
	return Position{Row: p.Row + q.Row, Col: p.Col + q.Col}
}

// Sub 返回 p - q
func (p Position) Sub(q Position) Position {
	return Position{Row: p.Row - q.Row, Col: p.Col - q.Col}
}

// Scale 返回 p * s
func (p Position) Scale(s float64) Position {
	return Position{Row: p.Row * s, Col: p.Col * s}
}

// DistanceSq 两点间欧氏距离的平方
func (p Position) DistanceSq(q Position) float64 {
	d := p.Sub(q)
	return d.Row*d.Row + d.Col*d.Col
}

// Axis 道路轴向
type Axis int

const (
	AxisHorizontal Axis = iota // 水平道路，行坐标不变
	AxisVertical               // 竖直道路，列坐标不变
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Direction 四个基本方向
// 功能：既表示车辆行驶方向，也表示车辆到达路口时所在的一侧（排队方向）
// 说明：声明顺序即信号灯轮转顺序 UP→DOWN→LEFT→RIGHT→UP
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight

	NumDirections = 4
)

// Directions 按信号灯轮转顺序排列的全部方向
var Directions = [NumDirections]Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

var directionNames = [NumDirections]string{"UP", "DOWN", "LEFT", "RIGHT"}

// (row, col)坐标系下的单位向量
var directionUnits = [NumDirections]Position{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

func (d Direction) String() string {
	if d < 0 || d >= NumDirections {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Unit 获取方向对应的单位向量
func (d Direction) Unit() Position {
	return directionUnits[d]
}

// Axis 获取方向所在的轴
func (d Direction) Axis() Axis {
	if d == DirectionUp || d == DirectionDown {
		return AxisVertical
	}
	return AxisHorizontal
}

// Opposite 获取相反方向
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	default:
		return DirectionLeft
	}
}

// Next 信号灯轮转中的下一个方向
func (d Direction) Next() Direction {
	return (d + 1) % NumDirections
}

// ParseDirection 将UP/DOWN/LEFT/RIGHT（大小写不敏感）解析为方向
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// VehicleState 车辆状态机的状态
type VehicleState int

const (
	StateMoving               VehicleState = iota // 正常行驶
	StateBlocked                                  // 上一次移动未通过间距检查，原地等待重试
	StateQueuedAtIntersection                     // 已在路口登记排队，冻结移动
	StateClearingIntersection                     // 已被路口放行，驶离清空半径前不再登记
)

func (s VehicleState) String() string {
	switch s {
	case StateMoving:
		return "MOVING"
	case StateBlocked:
		return "BLOCKED"
	case StateQueuedAtIntersection:
		return "QUEUED_AT_INTERSECTION"
	case StateClearingIntersection:
		return "CLEARING_INTERSECTION"
	default:
		return fmt.Sprintf("VehicleState(%d)", int(s))
	}
}

// LightState 路口放行方向的灯色
// 说明：黄灯仅在配置中声明，当前实现中放行方向始终为绿灯
type LightState int

const (
	LightGreen LightState = iota
	LightYellow
)

func (l LightState) String() string {
	switch l {
	case LightGreen:
		return "GREEN"
	case LightYellow:
		return "YELLOW"
	default:
		return fmt.Sprintf("LightState(%d)", int(l))
	}
}

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32               // 获取车辆ID（生成顺序分配，不可变）
	Origin() Position        // 获取生成位置
	Position() Position      // 获取当前位置
	Direction() Direction    // 获取行驶方向
	Speed() float64          // 获取速度（每步移动距离）
	State() VehicleState     // 获取状态
	Intersection() IJunction // 获取登记过的路口，未登记则为nil

	Enter(j IJunction)        // 进入路口邻近范围
	UnblockFromIntersection() // 由路口放行

	String() string
}

// entity/junction/junction.go的依赖倒置
type IJunction interface {
	ID() int32                   // 获取路口ID
	Position() Position          // 获取路口中心坐标
	RegisterApproach(v IVehicle) // 登记到对应方向的排队队列
}

// entity/occupancy/occupancy.go的依赖倒置
type IOccupancy interface {
	Release(pos Position, v IVehicle)       // 释放pos所在网格中v的占用，不存在则panic
	TryClaim(pos Position, v IVehicle) bool // 尝试占用pos，与邻近车辆间距不足时返回false
}
