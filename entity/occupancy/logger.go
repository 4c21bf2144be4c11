package occupancy

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "occupancy")
