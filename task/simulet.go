package task

import (
	"flag"

	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

const (
	SelfName = "gridtraffic" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个仿真步骤开始时进行准备工作
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出各状态车辆数与累计行驶距离
func (ctx *Context) prepare() {
	ctx.clock.Advance()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		vehicles := ctx.network.VehicleManager()
		counts := vehicles.CountByState()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) MOVING: %d BLOCKED: %d QUEUED: %d CLEARING: %d DISTANCE: %.1f",
			ctx.clock.InternalStep,
			hour, minute, second,
			counts[entity.StateMoving],
			counts[entity.StateBlocked],
			counts[entity.StateQueuedAtIntersection],
			counts[entity.StateClearingIntersection],
			vehicles.TravelDistance(),
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：路网推进一步（车辆移动、路口邻近判定、路口放行）
func (ctx *Context) update() {
	ctx.network.Tick()
}

// Run 运行
// 说明：每一步在sidecar的Step之间执行，RPC写入的数据在下一步生效；
// 到达结束步或sidecar通知关闭时退出，总步数为0时不设结束步
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	ctx.sidecar.Step(false)
	for {
		ctx.prepare()
		// 通知准备阶段完成
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		ctx.sidecar.NotifyStepReady()
		log.Debugf("step %d: NotifyStepReady complete", ctx.clock.InternalStep)
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		last := ctx.clock.IsLastStep()
		close := ctx.sidecar.Step(last)
		if close || last || ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete")
	ctx.Close()
}
