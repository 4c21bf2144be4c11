package network

import (
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/junction"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/occupancy"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/road"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/vehicle"
)

// RoadNetwork 路网
// 功能：持有道路、路口、占用网格与车辆，按固定顺序推进一步
// 说明：所有修改都在调用Tick的协程中完成，内部不加锁
type RoadNetwork struct {
	ctx entity.ITaskContext

	occupancy       *occupancy.Occupancy
	roadManager     *road.RoadManager
	junctionManager *junction.JunctionManager
	vehicleManager  *vehicle.VehicleManager
}

// New 根据运行时配置创建路网
// 功能：依次加入配置中的道路、初始车辆与随机车辆
// 参数：ctx-任务上下文
// 返回：路网；任何一项配置无法加入时返回nil与错误
func New(ctx entity.ITaskContext) (*RoadNetwork, error) {
	rc := ctx.RuntimeConfig()
	occ := occupancy.New(rc.All.Occupancy.CellSize, rc.SeparationSq)
	n := &RoadNetwork{
		ctx:             ctx,
		occupancy:       occ,
		roadManager:     road.NewManager(),
		junctionManager: junction.NewManager(ctx),
		vehicleManager:  vehicle.NewManager(ctx, occ),
	}
	if err := n.loadRoads(rc.All); err != nil {
		return nil, err
	}
	if err := n.loadVehicles(rc.All); err != nil {
		return nil, err
	}
	if rv := rc.All.RandomVehicles; rv != nil && rv.Count > 0 {
		n.spawnRandomVehicles(*rv)
	}
	log.Infof("network ready: %d roads, %d junctions, %d vehicles",
		n.roadManager.Len(), n.junctionManager.Len(), n.vehicleManager.Len())
	return n, nil
}

// AddRoad 加入道路
// 功能：拒绝重复道路；为新道路与已有道路的每个交点创建路口，同一坐标只创建一次
// 参数：r-由road.New创建的道路
// 返回：重复时返回road.ErrDuplicateRoad，路网不做修改
func (n *RoadNetwork) AddRoad(r *road.Road) error {
	crossings, err := n.roadManager.Add(r)
	if err != nil {
		return err
	}
	for _, p := range crossings {
		n.junctionManager.Ensure(p)
	}
	return nil
}

// AddVehicle 生成车辆
// 返回：初始位置无法占用时返回vehicle.ErrUnclaimablePosition
func (n *RoadNetwork) AddVehicle(pos entity.Position, direction entity.Direction, speed float64) (*vehicle.Vehicle, error) {
	return n.vehicleManager.Add(pos, direction, speed)
}

// Tick 推进一步
// 算法说明：
// 1. 按生成顺序推进每辆车
// 2. 对每辆车、每个路口（发现顺序）判断是否进入路口邻近范围，是则调用Enter
// 3. 按发现顺序推进每个路口的信号灯与排队队列
func (n *RoadNetwork) Tick() {
	n.vehicleManager.Update()
	n.checkProximity()
	n.junctionManager.Update()
}

func (n *RoadNetwork) checkProximity() {
	entrySq := n.ctx.RuntimeConfig().EntrySq
	junctions := n.junctionManager.Junctions()
	for _, v := range n.vehicleManager.Vehicles() {
		for _, j := range junctions {
			if v.Position().DistanceSq(j.Position()) < entrySq {
				v.Enter(j)
			}
		}
	}
}

func (n *RoadNetwork) Occupancy() *occupancy.Occupancy {
	return n.occupancy
}

func (n *RoadNetwork) RoadManager() *road.RoadManager {
	return n.roadManager
}

func (n *RoadNetwork) JunctionManager() *junction.JunctionManager {
	return n.junctionManager
}

func (n *RoadNetwork) VehicleManager() *vehicle.VehicleManager {
	return n.vehicleManager
}
