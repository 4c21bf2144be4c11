package junction

import (
	"fmt"

	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

// Junction管理器
type JunctionManager struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler

	ctx entity.ITaskContext

	data       map[int32]*Junction
	byPosition map[entity.Position]*Junction
	junctions  []*Junction // 按发现顺序
}

// NewManager 创建Junction管理器实例
// 功能：初始化Junction管理器，创建内部数据结构
// 参数：ctx-任务上下文
// 返回：新创建的Junction管理器实例
func NewManager(ctx entity.ITaskContext) *JunctionManager {
	return &JunctionManager{
		ctx:        ctx,
		data:       make(map[int32]*Junction),
		byPosition: make(map[entity.Position]*Junction),
		junctions:  make([]*Junction, 0),
	}
}

// Ensure 获取或创建位于pos的路口
// 功能：每个交点坐标只创建一个路口，信号周期取该坐标的配置值
// 参数：pos-道路交点
// 返回：路口实例，是否为新创建
func (m *JunctionManager) Ensure(pos entity.Position) (*Junction, bool) {
	if j, ok := m.byPosition[pos]; ok {
		return j, false
	}
	id := int32(len(m.junctions))
	j := newJunction(id, pos, m.ctx.RuntimeConfig().CycleLengthAt(pos.Row, pos.Col))
	m.junctions = append(m.junctions, j)
	m.data[id] = j
	m.byPosition[pos] = j
	log.Infof("create %v with cycle length %d", j, j.trafficLight.CycleLength())
	return j, true
}

// Get 根据ID获取Junction实例
// 功能：通过Junction ID查找对应的Junction对象，如果不存在则panic
// 参数：id-Junction的唯一标识符
// 返回：对应的Junction实例，如果不存在则panic
func (m *JunctionManager) Get(id int32) *Junction {
	if junction, ok := m.data[id]; !ok {
		log.Panicf("no id %d in junction data", id)
		return nil
	} else {
		return junction
	}
}

// GetOrError 根据ID获取Junction实例（带错误处理）
// 功能：通过Junction ID查找对应的Junction对象，如果不存在则返回错误
// 参数：id-Junction的唯一标识符
// 返回：Junction实例和错误信息，如果不存在则返回nil和错误
func (m *JunctionManager) GetOrError(id int32) (*Junction, error) {
	if junction, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in junction data", id)
	} else {
		return junction, nil
	}
}

// Junctions 按发现顺序获取所有路口
func (m *JunctionManager) Junctions() []*Junction {
	return m.junctions
}

// Len 路口数
func (m *JunctionManager) Len() int {
	return len(m.junctions)
}

// Update 更新阶段，按发现顺序推进所有路口
// 说明：路口放行会修改车辆状态，顺序执行以保证结果可复现
func (m *JunctionManager) Update() {
	for _, j := range m.junctions {
		j.update()
	}
}
