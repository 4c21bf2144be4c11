package task

import (
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/clock"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/network"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/config"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理时钟、路网、配置与sidecar
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理分布式模式下相关调用，包括与syncer、其他服务的交互
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 是否已启动sidecar服务
	serving bool

	// 路网
	network *network.RoadNetwork

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: sidecar实例，为nil时不提供RPC服务
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例；配置非法或路网无法构建时返回错误
// 算法说明：
// 1. 补全并校验配置，创建时钟
// 2. 根据配置构建路网（道路、路口、初始车辆）
// 3. 注册RPC服务到sidecar
// 4. 启动sidecar服务（如果需要）
func NewContext(
	job string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) (*Context, error) {
	ctx := &Context{
		job:            job,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
	}
	var err error
	if ctx.runtimeConfig, err = config.NewRuntimeConfig(c); err != nil {
		return nil, err
	}
	ctx.clock = clock.New(ctx.runtimeConfig.C.Step)

	if ctx.network, err = network.New(ctx); err != nil {
		return nil, err
	}

	if ctx.sidecar == nil {
		return ctx, nil
	}
	ctx.clock.Register(ctx.sidecar)
	ctx.network.JunctionManager().Register(ctx.sidecar)

	// sidecar协程，用于提供gRPC服务
	if startSidecarServe {
		ctx.serving = true
		go func() {
			err := ctx.sidecar.Serve()
			if err != nil {
				log.Panicf("failed to serve: %v", err)
			}
			ctx.sidecarCloseCh <- struct{}{}
		}()
	}

	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Network() *network.RoadNetwork {
	return ctx.network
}

func (ctx *Context) Init() {
	ctx.clock.Init()

	log.Infof("Job: %v", ctx.job)
	log.Infof("Road: %v", ctx.network.RoadManager().Len())
	log.Infof("Junction: %v", ctx.network.JunctionManager().Len())
	log.Infof("Vehicle: %v", ctx.network.VehicleManager().Len())
}

func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
	}
	// wait for graceful stop
	if ctx.serving {
		<-ctx.sidecarCloseCh
	}
	ctx.closed.Store(true)
}
