package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
)

// 默认值
const (
	DefaultCellSize            = 20.
	DefaultVehicleRadius       = 5.
	DefaultMinSeparationMargin = 2.
	DefaultEntryRadius         = 30.
	DefaultClearanceRadius     = 40.
	DefaultCycleLength         = 60
	DefaultRandomVehicleSpeed  = 1.
	DefaultWorldSize           = 800.
	DefaultInterval            = 1.
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并通过校验后的配置，以及由配置派生出的阈值
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	SeparationSq     float64 // 两车最小允许距离的平方 (2r+m)^2
	EntrySq          float64 // 路口进入判定距离的平方
	JunctionClearSq  float64 // 路口驶离判定距离的平方
	cycleByPositions map[Point]int32
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值、校验配置并计算派生阈值
// 参数：config-原始配置对象
// 返回：运行时配置指针；配置非法时返回错误
// 算法说明：
// 1. 对未填写（零值）的数值项补全默认值
// 2. 校验取值范围，网格边长必须不小于最小间距，保证3x3邻域扫描完整
// 3. 预计算各类平方阈值
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	applyDefaults(&config)
	if err := validate(config); err != nil {
		return nil, err
	}
	minDist := 2**config.Vehicle.Radius + *config.Vehicle.MinSeparationMargin
	rc := &RuntimeConfig{
		All:              config,
		C:                config.Control,
		SeparationSq:     minDist * minDist,
		EntrySq:          *config.Junction.EntryRadius * *config.Junction.EntryRadius,
		JunctionClearSq:  *config.Junction.ClearanceRadius * *config.Junction.ClearanceRadius,
		cycleByPositions: make(map[Point]int32),
	}
	for _, o := range config.Junction.CycleOverrides {
		rc.cycleByPositions[Point{Row: o.Row, Col: o.Col}] = o.CycleLength
	}
	return rc, nil
}

// CycleLengthAt 获取指定坐标路口的信号周期，未覆盖时返回全局值
func (rc *RuntimeConfig) CycleLengthAt(row, col float64) int32 {
	if c, ok := rc.cycleByPositions[Point{Row: row, Col: col}]; ok {
		return c
	}
	return rc.All.Junction.CycleLength
}

// applyDefaults 补全默认值
// 说明：0不合法的数值项（网格边长、周期、步长、世界范围）以0表示未填写；
// 0合法的数值项使用指针，nil表示未填写
func applyDefaults(c *Config) {
	if c.Control.Step.Interval == 0 {
		c.Control.Step.Interval = DefaultInterval
	}
	if c.World.Width == 0 {
		c.World.Width = DefaultWorldSize
	}
	if c.World.Height == 0 {
		c.World.Height = DefaultWorldSize
	}
	if c.Occupancy.CellSize == 0 {
		c.Occupancy.CellSize = DefaultCellSize
	}
	if c.Junction.CycleLength == 0 {
		c.Junction.CycleLength = DefaultCycleLength
	}
	c.Vehicle.Radius = orDefault(c.Vehicle.Radius, DefaultVehicleRadius)
	c.Vehicle.MinSeparationMargin = orDefault(c.Vehicle.MinSeparationMargin, DefaultMinSeparationMargin)
	c.Junction.EntryRadius = orDefault(c.Junction.EntryRadius, DefaultEntryRadius)
	c.Junction.ClearanceRadius = orDefault(c.Junction.ClearanceRadius, DefaultClearanceRadius)
	if c.RandomVehicles != nil {
		// 复制一份，避免修改调用方持有的配置
		rv := *c.RandomVehicles
		rv.Speed = orDefault(rv.Speed, DefaultRandomVehicleSpeed)
		c.RandomVehicles = &rv
	}
}

func orDefault(v *float64, def float64) *float64 {
	if v == nil {
		return lo.ToPtr(def)
	}
	return lo.ToPtr(*v)
}

func validate(c Config) error {
	if c.Control.Step.Interval < 0 || c.Control.Step.Total < 0 {
		return fmt.Errorf("%w: control.step must not be negative", ErrInvalidConfig)
	}
	if c.World.Width < 0 || c.World.Height < 0 {
		return fmt.Errorf("%w: world size must be positive", ErrInvalidConfig)
	}
	if c.Occupancy.CellSize <= 0 || *c.Vehicle.Radius < 0 || *c.Vehicle.MinSeparationMargin < 0 {
		return fmt.Errorf("%w: cell_size, radius and min_separation_margin must be positive", ErrInvalidConfig)
	}
	if minDist := 2**c.Vehicle.Radius + *c.Vehicle.MinSeparationMargin; c.Occupancy.CellSize < minDist {
		return fmt.Errorf("%w: cell_size %v is smaller than the minimum separation %v", ErrInvalidConfig, c.Occupancy.CellSize, minDist)
	}
	if *c.Junction.EntryRadius < 0 {
		return fmt.Errorf("%w: junction.entry_radius must be positive", ErrInvalidConfig)
	}
	if *c.Junction.ClearanceRadius < *c.Junction.EntryRadius {
		return fmt.Errorf("%w: junction.clearance_radius %v is smaller than entry_radius %v",
			ErrInvalidConfig, *c.Junction.ClearanceRadius, *c.Junction.EntryRadius)
	}
	if c.Junction.CycleLength < 0 {
		return fmt.Errorf("%w: junction.cycle_length must be positive", ErrInvalidConfig)
	}
	for _, o := range c.Junction.CycleOverrides {
		if o.CycleLength <= 0 {
			return fmt.Errorf("%w: cycle override at (%v,%v) must be positive", ErrInvalidConfig, o.Row, o.Col)
		}
	}
	if c.Junction.YellowRatio < 0 || c.Junction.YellowRatio >= 1 {
		return fmt.Errorf("%w: junction.yellow_ratio must be in [0,1)", ErrInvalidConfig)
	}
	for i, v := range c.Vehicles {
		if v.Speed < 0 || math.IsNaN(v.Speed) {
			return fmt.Errorf("%w: vehicle %d has negative speed", ErrInvalidConfig, i)
		}
	}
	if r := c.RandomVehicles; r != nil && (r.Count < 0 || *r.Speed < 0 || math.IsNaN(*r.Speed)) {
		return fmt.Errorf("%w: random_vehicles count and speed must not be negative", ErrInvalidConfig)
	}
	return nil
}
