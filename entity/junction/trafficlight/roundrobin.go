package trafficlight

import (
	"errors"
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
)

var (
	ErrInvalidPhase     = errors.New("invalid phase index")
	ErrInvalidRemaining = errors.New("invalid remaining ticks")
)

// roundRobinRuntime 轮转信号灯运行时数据
type roundRobinRuntime struct {
	active    entity.Direction // 当前放行方向
	tickCount int64            // 计时步数，外部设置相位时向前补齐
}

// phaseOverride 交互式接口写入的相位
type phaseOverride struct {
	active    entity.Direction
	remaining int32
}

// RoundRobinTrafficLight 四方向轮转信号灯
// 功能：每cycleLength步按UP→DOWN→LEFT→RIGHT顺序切换一次放行方向
// 说明：放行方向始终为绿灯；外部写入的相位先进入buffer，在下一次Update中生效
type RoundRobinTrafficLight struct {
	JunctionID  int32 // 所属junction ID
	cycleLength int32

	runtime roundRobinRuntime
	buffer  *phaseOverride
}

// NewRoundRobinTrafficLight 创建轮转信号灯
// 功能：初始放行方向为UP，步数为0
// 参数：junctionID-路口ID，cycleLength-每个方向的放行步数
func NewRoundRobinTrafficLight(junctionID int32, cycleLength int32) *RoundRobinTrafficLight {
	if cycleLength <= 0 {
		log.Panicf("junction %d: non-positive cycle length %d", junctionID, cycleLength)
	}
	return &RoundRobinTrafficLight{
		JunctionID:  junctionID,
		cycleLength: cycleLength,
		runtime:     roundRobinRuntime{active: entity.DirectionUp},
	}
}

// Update 更新阶段，推进一步
// 算法说明：
// 1. 步数加一，若为cycleLength的整数倍则切换到下一个方向
// 2. 如果buffer中有外部写入的相位，覆盖放行方向，并调整步数使剩余步数等于写入值
func (l *RoundRobinTrafficLight) Update() {
	l.runtime.tickCount++
	if l.runtime.tickCount%int64(l.cycleLength) == 0 {
		l.runtime.active = l.runtime.active.Next()
		log.Debugf("junction %d: switch to %v at tick %d", l.JunctionID, l.runtime.active, l.runtime.tickCount)
	}
	if l.buffer != nil {
		l.runtime.active = l.buffer.active
		// 保持步数单调递增，只补足到目标相位位置
		cycle := int64(l.cycleLength)
		target := cycle - int64(l.buffer.remaining)
		l.runtime.tickCount += (target - l.runtime.tickCount%cycle + cycle) % cycle
		l.buffer = nil
		log.Debugf("junction %d: phase set to %v, %d ticks remaining", l.JunctionID, l.runtime.active, l.RemainingTicks())
	}
}

// SetPhase 设置放行方向与剩余步数
// 参数：phaseIndex-方向下标（UP=0,DOWN=1,LEFT=2,RIGHT=3），remaining-剩余步数，取值[1, cycleLength]
// 说明：设置会延迟到下一次Update生效，多次设置以最后一次为准
func (l *RoundRobinTrafficLight) SetPhase(phaseIndex int32, remaining int32) error {
	if phaseIndex < 0 || phaseIndex >= entity.NumDirections {
		return fmt.Errorf("%w: %d", ErrInvalidPhase, phaseIndex)
	}
	if remaining < 1 || remaining > l.cycleLength {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidRemaining, remaining, l.cycleLength)
	}
	l.buffer = &phaseOverride{active: entity.Direction(phaseIndex), remaining: remaining}
	return nil
}

// Active 当前放行方向
func (l *RoundRobinTrafficLight) Active() entity.Direction {
	return l.runtime.active
}

// State 放行方向的灯色
func (l *RoundRobinTrafficLight) State() entity.LightState {
	return entity.LightGreen
}

// TickCount 计时步数
func (l *RoundRobinTrafficLight) TickCount() int64 {
	return l.runtime.tickCount
}

// CycleLength 每个方向的放行步数
func (l *RoundRobinTrafficLight) CycleLength() int32 {
	return l.cycleLength
}

// RemainingTicks 距离下一次切换的步数
func (l *RoundRobinTrafficLight) RemainingTicks() int32 {
	return l.cycleLength - int32(l.runtime.tickCount%int64(l.cycleLength))
}

// Get 以信控程序的形式描述轮转信号灯
// 功能：每个方向对应一个相位，相位中该方向为绿灯、其余方向为红灯
// 参数：dt-每步对应的时间
// 返回：信控程序，相位States按UP,DOWN,LEFT,RIGHT排列
func (l *RoundRobinTrafficLight) Get(dt float64) *mapv2.TrafficLight {
	tl := &mapv2.TrafficLight{
		JunctionId: l.JunctionID,
		Phases:     make([]*mapv2.Phase, entity.NumDirections),
	}
	for i, active := range entity.Directions {
		states := make([]mapv2.LightState, entity.NumDirections)
		for j, d := range entity.Directions {
			if d == active {
				states[j] = mapv2.LightState_LIGHT_STATE_GREEN
			} else {
				states[j] = mapv2.LightState_LIGHT_STATE_RED
			}
		}
		tl.Phases[i] = &mapv2.Phase{
			Duration: float64(l.cycleLength) * dt,
			States:   states,
		}
	}
	return tl
}
