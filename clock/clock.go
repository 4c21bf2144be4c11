package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/config"
)

// Clock 仿真时钟
// 功能：记录当前步数与对应的仿真时间，一步即路网的一次Tick
// 说明：路网内部只按步计数，DT用于把步数换算为对外展示的时间
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步对应的时间（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 功能：根据控制配置初始化时钟
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
// 说明：Total为0表示不限步数，由外部停止调用
func New(stepConfig config.ControlStep) *Clock {
	endStep := stepConfig.Start + stepConfig.Total
	if stepConfig.Total == 0 {
		endStep = -1
	}
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   endStep,
	}
	c.Init()
	return c
}

// Init 重置时钟状态到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Advance 前进一步
func (c *Clock) Advance() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Unlimited 是否不限步数
func (c *Clock) Unlimited() bool {
	return c.END_STEP < 0
}

// IsLastStep 下一步是否已经到达结束步
func (c *Clock) IsLastStep() bool {
	return !c.Unlimited() && c.InternalStep+1 >= c.END_STEP
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串
// 返回：格式化的时间字符串（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 功能：将当前时间分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
