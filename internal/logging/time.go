package logging

import "time"

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}
