package common

import "time"

var StartTime = time.Now().Unix() // unit: second

var Version = "v0.1.0"
