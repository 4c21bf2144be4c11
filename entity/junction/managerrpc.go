package junction

import (
	"context"
	"errors"
	"math"
	"net/http"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"git.fiblab.net/sim/syncer/v3"
)

// Register 将Junction管理器注册到sidecar
// 功能：将信号灯服务注册为RPC服务，提供远程调用接口
// 参数：sidecar-同步器侧车实例
func (m *JunctionManager) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		mapv2connect.TrafficLightServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return mapv2connect.NewTrafficLightServiceHandler(m, opts...)
		},
	)
}

// GetTrafficLight RPC接口：获取指定Junction的信号灯状态
// 功能：返回四相位轮转程序、当前放行方向下标和剩余时间
// 参数：ctx-上下文，in-包含Junction ID的请求
// 说明：相位下标按UP,DOWN,LEFT,RIGHT排列，时间为步数乘以每步时长
func (m *JunctionManager) GetTrafficLight(
	ctx context.Context, in *connect.Request[mapv2.GetTrafficLightRequest],
) (*connect.Response[mapv2.GetTrafficLightResponse], error) {
	req := in.Msg
	j, ok := m.data[req.JunctionId]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("junction id does not exist"))
	}
	dt := m.ctx.Clock().DT
	tl := j.trafficLight
	return connect.NewResponse(&mapv2.GetTrafficLightResponse{
		TrafficLight:  tl.Get(dt),
		PhaseIndex:    int32(tl.Active()),
		TimeRemaining: float64(tl.RemainingTicks()) * dt,
	}), nil
}

// SetTrafficLightPhase RPC接口：设置指定Junction的信号灯相位
// 功能：设置放行方向与剩余时间，在路口下一次更新时生效
// 参数：ctx-上下文，in-包含Junction ID、相位索引和剩余时间的请求
// 说明：剩余时间按每步时长向上取整为步数，须在(0, 周期时长]内
func (m *JunctionManager) SetTrafficLightPhase(
	ctx context.Context, in *connect.Request[mapv2.SetTrafficLightPhaseRequest],
) (*connect.Response[mapv2.SetTrafficLightPhaseResponse], error) {
	req := in.Msg
	j, ok := m.data[req.JunctionId]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("junction id does not exist"))
	}
	if req.TimeRemaining <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid remaining time"))
	}
	remaining := math.Ceil(req.TimeRemaining / m.ctx.Clock().DT)
	if remaining > math.MaxInt32 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid remaining time"))
	}
	if err := j.trafficLight.SetPhase(req.PhaseIndex, int32(remaining)); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&mapv2.SetTrafficLightPhaseResponse{}), nil
}
