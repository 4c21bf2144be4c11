package vehicle

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

// VehicleManager Vehicle管理器
// 功能：按生成顺序管理所有车辆，分配不可变的车辆ID并逐个推进
type VehicleManager struct {
	ctx       entity.ITaskContext
	occupancy entity.IOccupancy

	data     map[int32]*Vehicle
	vehicles []*Vehicle // 按生成顺序

	nextVehicleID int32
}

// NewManager 创建Vehicle管理器实例
// 参数：ctx-任务上下文，occupancy-车辆共享的占用网格
func NewManager(ctx entity.ITaskContext, occupancy entity.IOccupancy) *VehicleManager {
	return &VehicleManager{
		ctx:       ctx,
		occupancy: occupancy,
		data:      make(map[int32]*Vehicle),
		vehicles:  make([]*Vehicle, 0),
	}
}

// Add 生成车辆
// 功能：占用初始位置并分配下一个车辆ID
// 参数：pos-初始位置，direction-行驶方向，speed-每步移动距离
// 返回：车辆；失败时不消耗车辆ID
func (m *VehicleManager) Add(pos entity.Position, direction entity.Direction, speed float64) (*Vehicle, error) {
	v, err := newVehicle(m.ctx, m.occupancy, m.nextVehicleID, pos, direction, speed)
	if err != nil {
		return nil, err
	}
	m.nextVehicleID++
	m.data[v.id] = v
	m.vehicles = append(m.vehicles, v)
	log.Debugf("spawn %v speed %v", v, speed)
	return v, nil
}

// Get 根据ID获取Vehicle实例，不存在则panic
func (m *VehicleManager) Get(id int32) *Vehicle {
	if v, ok := m.data[id]; !ok {
		log.Panicf("no id %d in vehicle data", id)
		return nil
	} else {
		return v
	}
}

// GetOrError 根据ID获取Vehicle实例，不存在则返回错误
func (m *VehicleManager) GetOrError(id int32) (*Vehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in vehicle data", id)
	} else {
		return v, nil
	}
}

// Vehicles 按生成顺序获取所有车辆
func (m *VehicleManager) Vehicles() []*Vehicle {
	return m.vehicles
}

// Len 车辆数
func (m *VehicleManager) Len() int {
	return len(m.vehicles)
}

// Update 更新阶段，按生成顺序推进所有车辆
// 说明：车辆共享占用网格，必须顺序执行
func (m *VehicleManager) Update() {
	for _, v := range m.vehicles {
		v.Step()
	}
}

// CountByState 统计各状态的车辆数
func (m *VehicleManager) CountByState() map[entity.VehicleState]int {
	return lo.CountValuesBy(m.vehicles, func(v *Vehicle) entity.VehicleState {
		return v.state
	})
}

// TravelDistance 所有车辆的累计行驶距离
func (m *VehicleManager) TravelDistance() float64 {
	return lo.SumBy(m.vehicles, func(v *Vehicle) float64 {
		return v.distance
	})
}
