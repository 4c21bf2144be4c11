package road

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

var (
	ErrDuplicateRoad = errors.New("duplicate road")
)

// RoadManager Road管理器
// 功能：按加入顺序管理所有道路，拒绝重复道路
type RoadManager struct {
	data  map[int32]*Road
	roads []*Road
}

// NewManager 创建Road管理器实例
func NewManager() *RoadManager {
	return &RoadManager{
		data:  make(map[int32]*Road),
		roads: make([]*Road, 0),
	}
}

// Add 加入道路
// 功能：拒绝与已有道路端点完全相同的道路，成功后分配ID
// 参数：r-由New创建的道路
// 返回：新道路与之前每条道路的交点（按道路加入顺序），重复时返回ErrDuplicateRoad
func (m *RoadManager) Add(r *Road) ([]entity.Position, error) {
	if r.id >= 0 {
		return nil, fmt.Errorf("%w: %v already added", ErrDuplicateRoad, r)
	}
	if lo.ContainsBy(m.roads, r.Same) {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateRoad, r)
	}
	crossings := lo.FilterMap(m.roads, func(other *Road, _ int) (entity.Position, bool) {
		return r.Intersects(other)
	})
	r.id = int32(len(m.roads))
	m.roads = append(m.roads, r)
	m.data[r.id] = r
	log.Debugf("add %v with %d crossings", r, len(crossings))
	return crossings, nil
}

// Crossings 所有水平-竖直道路对的交点
// 说明：按道路加入顺序两两枚举，同一坐标可能出现多次
func (m *RoadManager) Crossings() []entity.Position {
	res := make([]entity.Position, 0)
	for i, a := range m.roads {
		for _, b := range m.roads[i+1:] {
			if p, ok := a.Intersects(b); ok {
				res = append(res, p)
			}
		}
	}
	return res
}

// Roads 按加入顺序获取所有道路
func (m *RoadManager) Roads() []*Road {
	return m.roads
}

// Len 道路数
func (m *RoadManager) Len() int {
	return len(m.roads)
}

// Get 根据ID获取Road实例，不存在则panic
func (m *RoadManager) Get(id int32) *Road {
	if road, ok := m.data[id]; !ok {
		log.Panicf("no id %d in road data", id)
		return nil
	} else {
		return road
	}
}

// GetOrError 根据ID获取Road实例，不存在则返回错误
func (m *RoadManager) GetOrError(id int32) (*Road, error) {
	if road, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in road data", id)
	} else {
		return road, nil
	}
}
