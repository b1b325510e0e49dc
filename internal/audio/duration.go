package audio

import "fmt"

// FormatDuration renders elapsed whole seconds as m:ss with zero-padded seconds.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
