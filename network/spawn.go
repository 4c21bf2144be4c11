package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/road"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/vehicle"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/randengine"
)

const (
	randomAttemptsPerVehicle = 20 // 随机生成时每辆车的最大尝试次数
)

// roadFromConfig 将道路配置转换为道路
// 功能：Axis+At按世界范围展开为全长道路，否则使用From+To
func roadFromConfig(c config.Road, world config.World) (*road.Road, error) {
	if c.Axis != "" {
		if c.From != nil || c.To != nil {
			return nil, fmt.Errorf("%w: road sets both axis and from/to", config.ErrInvalidConfig)
		}
		switch strings.ToLower(c.Axis) {
		case "horizontal":
			return road.New(entity.Position{Row: c.At, Col: 0}, entity.Position{Row: c.At, Col: world.Width})
		case "vertical":
			return road.New(entity.Position{Row: 0, Col: c.At}, entity.Position{Row: world.Height, Col: c.At})
		default:
			return nil, fmt.Errorf("%w: unknown road axis %q", config.ErrInvalidConfig, c.Axis)
		}
	}
	if c.From == nil || c.To == nil {
		return nil, fmt.Errorf("%w: road needs axis+at or from+to", config.ErrInvalidConfig)
	}
	return road.New(
		entity.Position{Row: c.From.Row, Col: c.From.Col},
		entity.Position{Row: c.To.Row, Col: c.To.Col},
	)
}

func (n *RoadNetwork) loadRoads(c config.Config) error {
	for i, rc := range c.Roads {
		r, err := roadFromConfig(rc, c.World)
		if err != nil {
			return fmt.Errorf("road %d: %w", i, err)
		}
		if err := n.AddRoad(r); err != nil {
			return fmt.Errorf("road %d: %w", i, err)
		}
	}
	return nil
}

func (n *RoadNetwork) loadVehicles(c config.Config) error {
	for i, vc := range c.Vehicles {
		d, err := entity.ParseDirection(vc.Direction)
		if err != nil {
			return fmt.Errorf("vehicle %d: %w", i, err)
		}
		if _, err := n.AddVehicle(entity.Position{Row: vc.Row, Col: vc.Col}, d, vc.Speed); err != nil {
			return fmt.Errorf("vehicle %d: %w", i, err)
		}
	}
	return nil
}

// spawnRandomVehicles 在道路上随机生成车辆
// 功能：按道路长度加权选择道路，在道路上均匀取点，沿道路轴向随机选择行驶方向
// 参数：c-随机生成配置
// 算法说明：
// 1. 以Seed初始化随机数引擎，结果可复现
// 2. 每次尝试选择道路与位置，位置与已有车辆间距不足则放弃本次尝试
// 3. 尝试次数用尽仍未生成足够车辆时记录警告
func (n *RoadNetwork) spawnRandomVehicles(c config.RandomVehicles) {
	roads := n.roadManager.Roads()
	if len(roads) == 0 {
		log.Warnf("random vehicles: no road to place %d vehicles", c.Count)
		return
	}
	generator := randengine.New(c.Seed)
	weights := lo.Map(roads, func(r *road.Road, _ int) float64 {
		return r.Length()
	})
	placed := 0
	for attempt := 0; attempt < c.Count*randomAttemptsPerVehicle && placed < c.Count; attempt++ {
		r := roads[generator.DiscreteDistribution(weights)]
		length := r.Length()
		pos := r.PositionAt(generator.Uniform(0, length) / length)
		var d entity.Direction
		switch r.Axis() {
		case entity.AxisHorizontal:
			d = lo.Ternary(generator.PTrue(0.5), entity.DirectionLeft, entity.DirectionRight)
		default:
			d = lo.Ternary(generator.PTrue(0.5), entity.DirectionUp, entity.DirectionDown)
		}
		if _, err := n.AddVehicle(pos, d, *c.Speed); err != nil {
			if errors.Is(err, vehicle.ErrUnclaimablePosition) {
				continue
			}
			log.Panicf("random vehicles: %v", err)
		}
		placed++
	}
	if placed < c.Count {
		log.Warnf("random vehicles: placed %d of %d", placed, c.Count)
	} else {
		log.Infof("random vehicles: placed %d", placed)
	}
}
