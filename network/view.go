package network

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/junction"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/road"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/vehicle"
)

// RoadView 道路只读视图
type RoadView struct {
	ID     int32
	From   entity.Position
	To     entity.Position
	Axis   entity.Axis
	Length float64
}

// JunctionView 路口只读视图
type JunctionView struct {
	ID             int32
	Position       entity.Position
	Active         entity.Direction // 当前放行方向
	Light          entity.LightState
	TickCount      int64
	CycleLength    int32
	RemainingTicks int32
	QueueLens      [entity.NumDirections]int // 按UP,DOWN,LEFT,RIGHT排列
}

// VehicleView 车辆只读视图
type VehicleView struct {
	ID         int32
	Origin     entity.Position
	Position   entity.Position
	Direction  entity.Direction
	Speed      float64
	State      entity.VehicleState
	JunctionID int32 // 最近一次登记的路口，未登记为-1
}

// Roads 按加入顺序获取所有道路的视图
func (n *RoadNetwork) Roads() []RoadView {
	return lo.Map(n.roadManager.Roads(), func(r *road.Road, _ int) RoadView {
		return RoadView{
			ID:     r.ID(),
			From:   r.From(),
			To:     r.To(),
			Axis:   r.Axis(),
			Length: r.Length(),
		}
	})
}

// Junctions 按发现顺序获取所有路口的视图
// 说明：只读取已提交的状态，可以并行构建
func (n *RoadNetwork) Junctions() []JunctionView {
	return parallel.GoMap(n.junctionManager.Junctions(), func(j *junction.Junction) JunctionView {
		tl := j.TrafficLight()
		view := JunctionView{
			ID:             j.ID(),
			Position:       j.Position(),
			Active:         tl.Active(),
			Light:          tl.State(),
			TickCount:      tl.TickCount(),
			CycleLength:    tl.CycleLength(),
			RemainingTicks: tl.RemainingTicks(),
		}
		for _, d := range entity.Directions {
			view.QueueLens[d] = j.QueueLen(d)
		}
		return view
	})
}

// Vehicles 按生成顺序获取所有车辆的视图
// 说明：只读取已提交的状态，可以并行构建
func (n *RoadNetwork) Vehicles() []VehicleView {
	return parallel.GoMap(n.vehicleManager.Vehicles(), func(v *vehicle.Vehicle) VehicleView {
		junctionID := int32(-1)
		if j := v.Intersection(); j != nil {
			junctionID = j.ID()
		}
		return VehicleView{
			ID:         v.ID(),
			Origin:     v.Origin(),
			Position:   v.Position(),
			Direction:  v.Direction(),
			Speed:      v.Speed(),
			State:      v.State(),
			JunctionID: junctionID,
		}
	})
}
