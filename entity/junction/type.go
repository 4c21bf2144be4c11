package junction

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

// 依赖倒置，表达junction对信号灯实现的接口需求

// 给路口与外部接口提供的信控读取接口
type ITrafficLightGetter interface {
	Get(dt float64) *mapv2.TrafficLight // 当前程序
	Active() entity.Direction           // 当前放行方向
	State() entity.LightState           // 放行方向的灯色
	TickCount() int64                   // 计时步数
	CycleLength() int32                 // 每个方向的放行步数
	RemainingTicks() int32              // 距离下一次切换的步数
}

// 信号灯接口
type ITrafficLight interface {
	ITrafficLightGetter
	Update() // 更新阶段，推进一步

	SetPhase(phaseIndex int32, remaining int32) error // 修改放行方向与剩余步数，下一步生效
}
