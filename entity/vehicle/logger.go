package vehicle

import "github.com/sirupsen/logrus"

// log 车辆模块的日志记录器
// 说明：状态机每次状态变化都以Debug级别记录
var log = logrus.WithField("module", "vehicle")
