package host

import "time"

func realNowMillis() int64 {
	return time.Now().UnixMilli()
}
