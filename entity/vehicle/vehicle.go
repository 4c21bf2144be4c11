package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

var (
	ErrUnclaimablePosition = errors.New("initial position is too close to another vehicle")
	ErrInvalidSpeed        = errors.New("invalid speed")
)

// Vehicle 车辆
// 功能：沿固定方向直线行驶，通过占用网格避让邻近车辆，在路口排队等待放行
// 说明：状态机共四个状态
//   - MOVING: 正常行驶
//   - BLOCKED: 前方间距不足，原地等待，下一步重试
//   - QUEUED_AT_INTERSECTION: 已在路口登记，冻结移动直到被放行
//   - CLEARING_INTERSECTION: 已被放行，驶出清空半径前不会重新登记
type Vehicle struct {
	ctx       entity.ITaskContext
	occupancy entity.IOccupancy

	id        int32
	origin    entity.Position
	pos       entity.Position
	direction entity.Direction
	speed     float64
	state     entity.VehicleState
	junction  entity.IJunction // 最近一次登记的路口，驶离后保留

	distance float64 // 累计行驶距离
}

// newVehicle 创建车辆并占用初始位置
// 参数：ctx-任务上下文，occupancy-占用网格，id-车辆ID，pos-初始位置，direction-行驶方向，speed-每步移动距离
// 返回：车辆；初始位置无法占用时返回ErrUnclaimablePosition，网格不做修改
func newVehicle(
	ctx entity.ITaskContext,
	occupancy entity.IOccupancy,
	id int32,
	pos entity.Position,
	direction entity.Direction,
	speed float64,
) (*Vehicle, error) {
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	if direction < 0 || direction >= entity.NumDirections {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnknownDirection, direction)
	}
	v := &Vehicle{
		ctx:       ctx,
		occupancy: occupancy,
		id:        id,
		origin:    pos,
		pos:       pos,
		direction: direction,
		speed:     speed,
		state:     entity.StateMoving,
	}
	if !occupancy.TryClaim(pos, v) {
		return nil, fmt.Errorf("%w: %v", ErrUnclaimablePosition, pos)
	}
	return v, nil
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{%d %v %v %v}", v.id, v.pos, v.direction, v.state)
}

// ID 获取车辆ID
func (v *Vehicle) ID() int32 {
	return v.id
}

// Origin 获取生成位置
func (v *Vehicle) Origin() entity.Position {
	return v.origin
}

func (v *Vehicle) Position() entity.Position {
	return v.pos
}

func (v *Vehicle) Direction() entity.Direction {
	return v.direction
}

func (v *Vehicle) Speed() float64 {
	return v.speed
}

func (v *Vehicle) State() entity.VehicleState {
	return v.state
}

// Intersection 获取最近一次登记的路口，从未登记时返回nil
func (v *Vehicle) Intersection() entity.IJunction {
	return v.junction
}

// Distance 累计行驶距离
func (v *Vehicle) Distance() float64 {
	return v.distance
}

func (v *Vehicle) setState(s entity.VehicleState) {
	if v.state != s {
		log.Debugf("vehicle %d: %v -> %v at %v", v.id, v.state, s, v.pos)
		v.state = s
	}
}

// Step 前进一步
// 算法说明：
// 1. 排队中的车辆不移动
// 2. 驶离中的车辆距离路口中心超过清空半径后恢复为MOVING
// 3. 计算候选位置 = 当前位置 + 方向单位向量*速度
// 4. 释放当前位置后尝试占用候选位置
// 5. 成功则提交新位置，BLOCKED恢复为MOVING，驶离状态保持不变
// 6. 失败则重新占用原位置（必然成功）并进入BLOCKED
func (v *Vehicle) Step() {
	if v.state == entity.StateQueuedAtIntersection {
		return
	}
	if v.state == entity.StateClearingIntersection &&
		v.pos.DistanceSq(v.junction.Position()) > v.ctx.RuntimeConfig().JunctionClearSq {
		v.setState(entity.StateMoving)
	}
	candidate := v.pos.Add(v.direction.Unit().Scale(v.speed))
	v.occupancy.Release(v.pos, v)
	if v.occupancy.TryClaim(candidate, v) {
		v.pos = candidate
		v.distance += v.speed
		if v.state == entity.StateBlocked {
			v.setState(entity.StateMoving)
		}
		return
	}
	if !v.occupancy.TryClaim(v.pos, v) {
		log.Panicf("vehicle %d: cannot reclaim %v", v.id, v.pos)
	}
	v.setState(entity.StateBlocked)
}

// Enter 进入路口的邻近范围
// 功能：驶离中的车辆忽略；其余车辆登记到路口并冻结
// 参数：j-路口
func (v *Vehicle) Enter(j entity.IJunction) {
	if v.state == entity.StateClearingIntersection {
		return
	}
	j.RegisterApproach(v)
	v.junction = j
	v.setState(entity.StateQueuedAtIntersection)
}

// UnblockFromIntersection 由路口放行
// 说明：只有排队中的车辆可以被放行，否则说明路口队列与车辆状态不一致，直接panic
func (v *Vehicle) UnblockFromIntersection() {
	if v.state != entity.StateQueuedAtIntersection {
		log.Panicf("vehicle %d: unblock in state %v", v.id, v.state)
	}
	v.setState(entity.StateClearingIntersection)
}
