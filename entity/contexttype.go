package entity

import (
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/clock"
	"github.com/tsinghua-fib-lab/agentsociety-gridtraffic/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
}
