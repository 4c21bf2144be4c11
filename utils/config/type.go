package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：控制仿真的起始步、总步数和每步对应的时间
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// World 世界范围，全长道路的简写形式按此范围展开
type World struct {
	Width  float64 `yaml:"width"`  // 列方向范围
	Height float64 `yaml:"height"` // 行方向范围
}

// Occupancy 空间占用网格配置
type Occupancy struct {
	CellSize float64 `yaml:"cell_size"` // 网格边长
}

// Vehicle 车辆几何配置
// 说明：两车中心的最小允许距离为 2*Radius+MinSeparationMargin；0是合法取值，未填写（nil）时取默认值
type Vehicle struct {
	Radius              *float64 `yaml:"radius,omitempty"`                // 车辆半径
	MinSeparationMargin *float64 `yaml:"min_separation_margin,omitempty"` // 额外安全间隔
}

// CycleOverride 按路口坐标覆盖信号周期
type CycleOverride struct {
	Row         float64 `yaml:"row"`
	Col         float64 `yaml:"col"`
	CycleLength int32   `yaml:"cycle_length"`
}

// Junction 路口配置
// 功能：定义路口进入判定、清空判定与信号灯轮转参数
// 说明：YellowRatio仅作声明，信号灯始终保持绿灯，放行不受其影响
type Junction struct {
	EntryRadius     *float64        `yaml:"entry_radius,omitempty"`     // 进入排队的判定半径，nil取默认值
	ClearanceRadius *float64        `yaml:"clearance_radius,omitempty"` // 驶离路口的判定半径，nil取默认值
	CycleLength     int32           `yaml:"cycle_length"`               // 每个方向的放行步数
	YellowRatio     float64         `yaml:"yellow_ratio,omitempty"`     // 黄灯占比（未启用）
	CycleOverrides  []CycleOverride `yaml:"cycle_overrides,omitempty"`  // 指定路口的周期
}

// Point 行列坐标
type Point struct {
	Row float64 `yaml:"row"`
	Col float64 `yaml:"col"`
}

// Road 道路配置，Axis+At与From+To二选一
// 功能：Axis+At表示贯穿整个世界范围的直线道路，From+To表示任意轴对齐线段
type Road struct {
	Axis string  `yaml:"axis,omitempty"` // horizontal|vertical
	At   float64 `yaml:"at,omitempty"`   // 水平道路为行坐标，竖直道路为列坐标
	From *Point  `yaml:"from,omitempty"`
	To   *Point  `yaml:"to,omitempty"`
}

// VehicleSpawn 初始车辆
type VehicleSpawn struct {
	Row       float64 `yaml:"row"`
	Col       float64 `yaml:"col"`
	Direction string  `yaml:"direction"` // UP|DOWN|LEFT|RIGHT
	Speed     float64 `yaml:"speed"`     // 每步移动距离
}

// RandomVehicles 随机生成初始车辆的配置
type RandomVehicles struct {
	Count int      `yaml:"count"`
	Seed  uint64   `yaml:"seed"`
	Speed *float64 `yaml:"speed,omitempty"` // nil取默认值
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含控制、世界范围、占用网格、车辆、路口、道路与初始车辆等配置项
type Config struct {
	Control        Control         `yaml:"control"`                   // 模拟过程控制
	World          World           `yaml:"world"`                     // 世界范围
	Occupancy      Occupancy       `yaml:"occupancy"`                 // 占用网格
	Vehicle        Vehicle         `yaml:"vehicle"`                   // 车辆几何
	Junction       Junction        `yaml:"junction"`                  // 路口
	Roads          []Road          `yaml:"roads"`                     // 道路
	Vehicles       []VehicleSpawn  `yaml:"vehicles,omitempty"`        // 初始车辆
	RandomVehicles *RandomVehicles `yaml:"random_vehicles,omitempty"` // 随机初始车辆
}
