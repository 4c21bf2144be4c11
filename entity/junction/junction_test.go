package junction_test

import (
	"context"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/clock"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/entity/junction"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/config"
)

type testContext struct {
	clock *clock.Clock
	rc    *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                  { return c.clock }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.rc }

func newManager(t *testing.T, cfg config.Config) *junction.JunctionManager {
	t.Helper()
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)
	return junction.NewManager(&testContext{clock: clock.New(rc.C.Step), rc: rc})
}

// 可由测试直接设置状态的车辆
type stubVehicle struct {
	id       int32
	pos      entity.Position
	dir      entity.Direction
	state    entity.VehicleState
	junction entity.IJunction
}

func (v *stubVehicle) ID() int32                      { return v.id }
func (v *stubVehicle) Origin() entity.Position        { return v.pos }
func (v *stubVehicle) Position() entity.Position      { return v.pos }
func (v *stubVehicle) Direction() entity.Direction    { return v.dir }
func (v *stubVehicle) Speed() float64                 { return 1 }
func (v *stubVehicle) State() entity.VehicleState     { return v.state }
func (v *stubVehicle) Intersection() entity.IJunction { return v.junction }
func (v *stubVehicle) String() string                 { return fmt.Sprintf("stub%d", v.id) }

func (v *stubVehicle) Enter(j entity.IJunction) {
	j.RegisterApproach(v)
	v.junction = j
	v.state = entity.StateQueuedAtIntersection
}

func (v *stubVehicle) UnblockFromIntersection() {
	if v.state != entity.StateQueuedAtIntersection {
		panic("unblock a vehicle that is not queued")
	}
	v.state = entity.StateClearingIntersection
}

func pos(row, col float64) entity.Position {
	return entity.Position{Row: row, Col: col}
}

func TestEnsureIdempotent(t *testing.T) {
	m := newManager(t, config.Config{
		Junction: config.Junction{
			CycleLength:    7,
			CycleOverrides: []config.CycleOverride{{Row: 200, Col: 400, CycleLength: 3}},
		},
	})
	a, created := m.Ensure(pos(400, 400))
	assert.True(t, created)
	b, created := m.Ensure(pos(400, 400))
	assert.False(t, created)
	assert.Same(t, a, b)
	c, created := m.Ensure(pos(200, 400))
	assert.True(t, created)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, int32(0), a.ID())
	assert.Equal(t, int32(1), c.ID())
	assert.Equal(t, int32(7), a.TrafficLight().CycleLength())
	assert.Equal(t, int32(3), c.TrafficLight().CycleLength())
	assert.Same(t, c, m.Get(1))
	_, err := m.GetOrError(2)
	assert.Error(t, err)
	assert.Panics(t, func() { m.Get(2) })
}

func TestLightRotation(t *testing.T) {
	m := newManager(t, config.Config{Junction: config.Junction{CycleLength: 3}})
	j, _ := m.Ensure(pos(400, 400))
	assert.Equal(t, entity.DirectionUp, j.TrafficLight().Active())

	want := []entity.Direction{
		entity.DirectionUp, entity.DirectionUp, entity.DirectionDown,
		entity.DirectionDown, entity.DirectionDown, entity.DirectionLeft,
		entity.DirectionLeft, entity.DirectionLeft, entity.DirectionRight,
		entity.DirectionRight, entity.DirectionRight, entity.DirectionUp,
	}
	for i, d := range want {
		m.Update()
		assert.Equal(t, d, j.TrafficLight().Active(), "tick %d", i+1)
		assert.Equal(t, int64(i+1), j.TrafficLight().TickCount())
		assert.Equal(t, entity.LightGreen, j.TrafficLight().State())
	}
}

func TestApproachSide(t *testing.T) {
	m := newManager(t, config.Config{})
	j, _ := m.Ensure(pos(400, 400))
	cases := []struct {
		pos  entity.Position
		dir  entity.Direction
		side entity.Direction
	}{
		{pos(380, 400), entity.DirectionDown, entity.DirectionUp},
		{pos(420, 400), entity.DirectionUp, entity.DirectionDown},
		{pos(400, 370), entity.DirectionRight, entity.DirectionLeft},
		{pos(400, 430), entity.DirectionLeft, entity.DirectionRight},
		{pos(380, 430), entity.DirectionLeft, entity.DirectionUp},
		{pos(400, 400), entity.DirectionLeft, entity.DirectionRight},
		{pos(400, 400), entity.DirectionDown, entity.DirectionUp},
	}
	for _, c := range cases {
		v := &stubVehicle{pos: c.pos, dir: c.dir}
		assert.Equal(t, c.side, j.ApproachSide(v), "%v heading %v", c.pos, c.dir)
	}
}

func TestQueueFIFO(t *testing.T) {
	m := newManager(t, config.Config{Junction: config.Junction{CycleLength: 10}})
	j, _ := m.Ensure(pos(400, 400))

	vs := []*stubVehicle{
		{id: 3, pos: pos(390, 400), dir: entity.DirectionDown},
		{id: 1, pos: pos(375, 400), dir: entity.DirectionDown},
		{id: 2, pos: pos(380, 400), dir: entity.DirectionDown},
	}
	for _, v := range vs {
		v.Enter(j)
	}
	// 重复登记不改变队列
	vs[0].Enter(j)
	assert.Equal(t, 3, j.QueueLen(entity.DirectionUp))
	assert.Equal(t, 0, j.QueueLen(entity.DirectionDown))
	ids := lo.Map(j.Queue(entity.DirectionUp), func(v entity.IVehicle, _ int) int32 { return v.ID() })
	assert.Equal(t, []int32{3, 1, 2}, ids)

	for i, v := range vs {
		m.Update()
		assert.Equal(t, entity.StateClearingIntersection, v.state, "tick %d", i+1)
		assert.Equal(t, len(vs)-i-1, j.QueueLen(entity.DirectionUp))
		for _, rest := range vs[i+1:] {
			assert.Equal(t, entity.StateQueuedAtIntersection, rest.state)
		}
	}
	// 空队列时什么也不做
	m.Update()
}

func TestOnlyActiveSideDrains(t *testing.T) {
	m := newManager(t, config.Config{Junction: config.Junction{CycleLength: 2}})
	j, _ := m.Ensure(pos(400, 400))
	left := &stubVehicle{id: 1, pos: pos(400, 380), dir: entity.DirectionRight}
	left.Enter(j)

	// UP: tick1; DOWN: tick2-3; LEFT: tick4
	for range 3 {
		m.Update()
		assert.Equal(t, entity.StateQueuedAtIntersection, left.state)
	}
	m.Update()
	assert.Equal(t, entity.DirectionLeft, j.TrafficLight().Active())
	assert.Equal(t, entity.StateClearingIntersection, left.state)
}

func TestStaleRegistrationDropped(t *testing.T) {
	m := newManager(t, config.Config{Junction: config.Junction{CycleLength: 10}})
	a, _ := m.Ensure(pos(400, 400))
	b, _ := m.Ensure(pos(400, 800))
	v := &stubVehicle{id: 1, pos: pos(390, 400), dir: entity.DirectionDown}
	v.Enter(a)
	v.Enter(b)

	assert.NotPanics(t, m.Update)
	// a弹出的是过期登记；b在同一步放行
	assert.Equal(t, 0, a.QueueLen(entity.DirectionUp))
	assert.Equal(t, entity.StateClearingIntersection, v.state)
}

func TestReRegisterMovesSide(t *testing.T) {
	m := newManager(t, config.Config{Junction: config.Junction{CycleLength: 3}})
	j, _ := m.Ensure(pos(400, 400))
	v := &stubVehicle{id: 1, pos: pos(390, 400), dir: entity.DirectionDown}
	v.Enter(j)
	require.Equal(t, 1, j.QueueLen(entity.DirectionUp))

	v.pos = pos(410, 400)
	v.Enter(j)
	assert.Equal(t, 0, j.QueueLen(entity.DirectionUp))
	assert.Equal(t, 1, j.QueueLen(entity.DirectionDown))

	// UP放行期间不应放行已换到DOWN侧的车辆
	for range 2 {
		m.Update()
		require.Equal(t, entity.DirectionUp, j.TrafficLight().Active())
		assert.Equal(t, entity.StateQueuedAtIntersection, v.state)
	}
	m.Update()
	assert.Equal(t, entity.DirectionDown, j.TrafficLight().Active())
	assert.Equal(t, entity.StateClearingIntersection, v.state)
	assert.Equal(t, 0, j.QueueLen(entity.DirectionDown))
}

func TestTrafficLightRPC(t *testing.T) {
	m := newManager(t, config.Config{
		Control:  config.Control{Step: config.ControlStep{Interval: 0.5}},
		Junction: config.Junction{CycleLength: 4},
	})
	j, _ := m.Ensure(pos(400, 400))
	m.Update()
	ctx := context.Background()

	res, err := m.GetTrafficLight(ctx, connect.NewRequest(&mapv2.GetTrafficLightRequest{JunctionId: j.ID()}))
	require.NoError(t, err)
	tl := res.Msg.TrafficLight
	assert.Equal(t, j.ID(), tl.JunctionId)
	require.Len(t, tl.Phases, 4)
	for i, p := range tl.Phases {
		assert.Equal(t, 2.0, p.Duration)
		for k, s := range p.States {
			if k == i {
				assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, s)
			} else {
				assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, s)
			}
		}
	}
	assert.Equal(t, int32(0), res.Msg.PhaseIndex)
	assert.Equal(t, 1.5, res.Msg.TimeRemaining)

	_, err = m.GetTrafficLight(ctx, connect.NewRequest(&mapv2.GetTrafficLightRequest{JunctionId: 9}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	// 设置在下一步生效
	_, err = m.SetTrafficLightPhase(ctx, connect.NewRequest(&mapv2.SetTrafficLightPhaseRequest{
		JunctionId: j.ID(), PhaseIndex: 2, TimeRemaining: 1.2,
	}))
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionUp, j.TrafficLight().Active())
	m.Update()
	assert.Equal(t, entity.DirectionLeft, j.TrafficLight().Active())
	assert.Equal(t, int32(3), j.TrafficLight().RemainingTicks())
	for range 2 {
		m.Update()
		assert.Equal(t, entity.DirectionLeft, j.TrafficLight().Active())
	}
	m.Update()
	assert.Equal(t, entity.DirectionRight, j.TrafficLight().Active())
	assert.Equal(t, int32(4), j.TrafficLight().RemainingTicks())

	for _, req := range []*mapv2.SetTrafficLightPhaseRequest{
		{JunctionId: 9, PhaseIndex: 0, TimeRemaining: 1},
		{JunctionId: j.ID(), PhaseIndex: 4, TimeRemaining: 1},
		{JunctionId: j.ID(), PhaseIndex: 0, TimeRemaining: 0},
		{JunctionId: j.ID(), PhaseIndex: 0, TimeRemaining: 2.5},
	} {
		_, err = m.SetTrafficLightPhase(ctx, connect.NewRequest(req))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "%v", req)
	}
}
