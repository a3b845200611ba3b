package ir

import "fmt"

// Timecode renders a frame number as HH:MM:SS:FF at the given frame rate.
// A non-positive fps renders the raw frame count as "@<frame>".
func Timecode(frame, fps int64) string {
	if fps <= 0 {
		return fmt.Sprintf("@%d", frame)
	}
	sign := ""
	if frame < 0 {
		sign = "-"
		frame = -frame
	}
	ff := frame % fps
	total := frame / fps
	return fmt.Sprintf("%s%02d:%02d:%02d:%02d", sign, total/3600, (total/60)%60, total%60, ff)
}
