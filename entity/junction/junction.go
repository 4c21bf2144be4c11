package junction

import (
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/container"
)

// Junction 路口
// 功能：维护四个方向的排队队列与轮转信号灯，每步从放行方向队首放行一辆车
// 说明：方向表示车辆到达时位于路口的哪一侧，而非行驶方向
type Junction struct {
	id           int32
	pos          entity.Position
	trafficLight ITrafficLight
	queues       [entity.NumDirections]*container.List[entity.IVehicle]
}

// newJunction 创建路口
// 参数：id-路口ID（发现顺序），pos-路口中心，cycleLength-每个方向的放行步数
func newJunction(id int32, pos entity.Position, cycleLength int32) *Junction {
	j := &Junction{
		id:           id,
		pos:          pos,
		trafficLight: trafficlight.NewRoundRobinTrafficLight(id, cycleLength),
	}
	for _, d := range entity.Directions {
		j.queues[d] = container.NewList[entity.IVehicle](fmt.Sprintf("junction-%d-%v", id, d))
	}
	return j
}

func (j *Junction) String() string {
	return fmt.Sprintf("Junction{%d %v}", j.id, j.pos)
}

// ID 获取Junction的唯一标识符
func (j *Junction) ID() int32 {
	if j == nil {
		return -1
	}
	return j.id
}

// Position 获取路口中心坐标
func (j *Junction) Position() entity.Position {
	return j.pos
}

// TrafficLight 获取信号灯的只读接口
func (j *Junction) TrafficLight() ITrafficLightGetter {
	return j.trafficLight
}

// QueueLen 获取指定方向的排队车辆数
func (j *Junction) QueueLen(d entity.Direction) int {
	return j.queues[d].Len()
}

// Queue 按排队顺序获取指定方向的车辆
func (j *Junction) Queue(d entity.Direction) []entity.IVehicle {
	return j.queues[d].Values()
}

// ApproachSide 计算车辆相对路口所在的一侧
// 算法说明：
// 1. 先比较行坐标：在路口上方为UP，下方为DOWN
// 2. 行坐标相同时比较列坐标：在左侧为LEFT，右侧为RIGHT
// 3. 恰好位于路口中心时，取与行驶方向相反的一侧（即车辆驶来的一侧）
func (j *Junction) ApproachSide(v entity.IVehicle) entity.Direction {
	p := v.Position()
	switch {
	case p.Row < j.pos.Row:
		return entity.DirectionUp
	case p.Row > j.pos.Row:
		return entity.DirectionDown
	case p.Col < j.pos.Col:
		return entity.DirectionLeft
	case p.Col > j.pos.Col:
		return entity.DirectionRight
	default:
		return v.Direction().Opposite()
	}
}

// RegisterApproach 登记车辆到对应一侧的排队队列
// 说明：已在该队列中的车辆不重复登记；车辆在其他一侧的旧登记被移除
func (j *Junction) RegisterApproach(v entity.IVehicle) {
	side := j.ApproachSide(v)
	same := func(o entity.IVehicle) bool { return o.ID() == v.ID() }
	for d, other := range j.queues {
		if entity.Direction(d) == side {
			continue
		}
		if node := other.Find(same); node != nil {
			other.Remove(node)
			log.Debugf("%v: %v moved from %v side to %v side", j, v, entity.Direction(d), side)
		}
	}
	q := j.queues[side]
	if q.Find(same) != nil {
		return
	}
	q.PushBack(container.NewListNode(v))
	log.Debugf("%v: %v queued on %v side (%d waiting)", j, v, side, q.Len())
}

// update 更新阶段，推进信号灯并放行
// 功能：信号灯前进一步后，若放行方向队列非空则弹出队首车辆并通知其驶离
// 说明：车辆在排队期间改为登记到其他路口时，本路口弹出的是过期登记，直接丢弃；
// 同一路口内换侧登记已在RegisterApproach中处理
func (j *Junction) update() {
	j.trafficLight.Update()
	q := j.queues[j.trafficLight.Active()]
	if q.Len() == 0 {
		return
	}
	v := q.PopFront()
	if in := v.Intersection(); in == nil || in.ID() != j.id || v.State() != entity.StateQueuedAtIntersection {
		log.Debugf("%v: drop stale registration of %v", j, v)
		return
	}
	log.Debugf("%v: release %v from %v side", j, v, j.trafficLight.Active())
	v.UnblockFromIntersection()
}
