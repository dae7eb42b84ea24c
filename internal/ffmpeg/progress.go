package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type progressUpdate struct {
	Percent int
	Speed   string
	ETA     string
}

type progressState struct {
	duration   float64
	outTimeUS  int64
	speed      string
	lastReport time.Time
	sawEnd     bool
}

func newProgressState(duration float64) *progressState {
	return &progressState{duration: duration, speed: "..."}
}

// feed consumes one key=value line from the progress stream. It emits
// an update on progress= boundary lines, at most once per interval.
func (p *progressState) feed(line string, now time.Time) (progressUpdate, bool) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "out_time_us="):
		if v, err := strconv.ParseInt(strings.TrimPrefix(line, "out_time_us="), 10, 64); err == nil {
			p.outTimeUS = v
		}
	case strings.HasPrefix(line, "speed="):
		p.speed = strings.TrimSpace(strings.TrimPrefix(line, "speed="))
	case line == "progress=continue", line == "progress=end":
		if line == "progress=end" {
			p.sawEnd = true
		}
		if p.duration <= 0 || now.Sub(p.lastReport) < progressInterval {
			return progressUpdate{}, false
		}
		p.lastReport = now
		return p.snapshot(), true
	}
	return progressUpdate{}, false
}

func (p *progressState) snapshot() progressUpdate {
	processed := float64(p.outTimeUS) / 1e6
	pct := int(processed / p.duration * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}

	etaSecs := 0
	if mult := parseSpeed(p.speed); mult > 0 {
		etaSecs = int((p.duration - processed) / mult)
		if etaSecs < 0 {
			etaSecs = 0
		}
	}

	return progressUpdate{Percent: pct, Speed: p.speed, ETA: formatETA(etaSecs)}
}

// parseSpeed parses ffmpeg's speed value ("2.5x") into a multiplier.
func parseSpeed(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "x"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatETA(secs int) string {
	if secs > 60 {
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}
