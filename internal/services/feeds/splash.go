package feeds

import (
	"time"

	"YiJinJing/internal/domain/models"
)

const (
	SplashDuration = 4 * time.Second
	splashStep     = 50 * time.Millisecond
)

// Splash returns the loading screen state after elapsed. Progress moves in 50ms steps.
func Splash(elapsed time.Duration) models.SplashProgress {
	if elapsed < 0 {
		elapsed = 0
	}
	steps := int64(elapsed / splashStep)
	total := int64(SplashDuration / splashStep)
	if steps >= total {
		return models.SplashProgress{
			Percent: 100,
			Message: LoadingMessages[len(LoadingMessages)-1],
			Done:    true,
		}
	}
	percent := int(steps * 100 / total)
	idx := int(steps * int64(len(LoadingMessages)) / total)
	if idx >= len(LoadingMessages) {
		idx = len(LoadingMessages) - 1
	}
	return models.SplashProgress{Percent: percent, Message: LoadingMessages[idx]}
}
