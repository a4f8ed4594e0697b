package risk

import (
	"time"

	logger "github.com/sirupsen/logrus"

	"signalengine/src/model"
)

// Session labels a New York trading window.
type Session string

const (
	SessionWeekendHoliday Session = "weekend_holiday"
	SessionDeadZone       Session = "dead_zone"
	SessionAsia           Session = "asia_session"
	SessionLondon         Session = "london_session"
	SessionUS             Session = "us_session"
	SessionDefault        Session = "default"
	SessionNoTrade        Session = "no_trade"

	daysPerWeek = 7
)

// SessionCondition rejects signals arriving inside the New York no-trade
// window: Friday 09:00 until Sunday 03:00, plus US market holidays.
type SessionCondition struct {
	loc *time.Location
}

func NewSessionCondition() *SessionCondition {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.WithError(err).Warn("America/New_York unavailable, session filter falls back to UTC")
		loc = time.UTC
	}
	return &SessionCondition{loc: loc}
}

func (c *SessionCondition) Favorable(sig model.Signal, at time.Time) bool {
	et := at.In(c.loc)
	if IsNoTradeWindow(et) {
		logger.WithFields(logger.Fields{
			"symbol":  sig.Symbol,
			"session": SessionNoTrade,
			"ny_time": et.Format(time.RFC3339),
		}).Info("signal inside no-trade window")
		return false
	}
	return true
}

// DetectSession classifies a New York local time.
func DetectSession(t time.Time) Session {
	if IsNoTradeWindow(t) {
		return SessionNoTrade
	}
	if t.Weekday() == time.Sunday && isLondonSession(t) {
		return SessionLondon
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday || isHoliday(t) {
		return SessionWeekendHoliday
	}

	switch h := t.Hour(); {
	case h >= 17 && h < 20:
		return SessionDeadZone
	case h >= 20 || h < 3:
		return SessionAsia
	case isLondonSession(t):
		return SessionLondon
	case h >= 9 && h <= 17:
		return SessionUS
	default:
		return SessionDefault
	}
}

// IsNoTradeWindow expects t in New York local time. Sunday from 03:00 is
// tradable even on a holiday because London is open.
func IsNoTradeWindow(t time.Time) bool {
	if t.Weekday() == time.Sunday && isLondonSession(t) {
		return false
	}
	if isHoliday(t) {
		return true
	}

	h := t.Hour()
	switch t.Weekday() {
	case time.Friday:
		return h >= 9
	case time.Saturday:
		return true
	case time.Sunday:
		return h < 3
	default:
		return false
	}
}

func isLondonSession(t time.Time) bool {
	return t.Hour() >= 3 && t.Hour() < 9
}

func isHoliday(t time.Time) bool {
	year := t.Year()

	observedSunday := func(d time.Time) time.Time {
		if d.Weekday() == time.Sunday {
			return d.AddDate(0, 0, 1)
		}
		return d
	}

	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	holidays := []time.Time{
		observedSunday(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.January, time.Monday, 2),
		nthWeekday(year, time.February, time.Monday, 2),
		memorialDay,
		observedSunday(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.September, time.Monday, 0),
		nthWeekday(year, time.November, time.Thursday, 3),
		observedSunday(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}

	day := t.Format("2006-01-02")
	for _, h := range holidays {
		if h.Format("2006-01-02") == day {
			return true
		}
	}
	return false
}

// nthWeekday returns the weekday of a month after skipping `skip` earlier ones
// (skip=2 is the third Monday).
func nthWeekday(year int, month time.Month, wd time.Weekday, skip int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(wd-first.Weekday()+daysPerWeek) % daysPerWeek
	return first.AddDate(0, 0, offset+skip*daysPerWeek)
}
