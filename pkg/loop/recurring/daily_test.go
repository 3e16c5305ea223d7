package recurring

import (
	"testing"
	"time"
)

func TestDaily_Until(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	d := daily{hour: 8, minute: 30, loc: saoPaulo}

	for name, testcase := range map[string]struct {
		when time.Time
		then time.Duration
	}{
		"before the time of today": {
			when: time.Date(2026, 10, 19, 6, 0, 0, 0, saoPaulo),
			then: 2*time.Hour + 30*time.Minute,
		},
		"just on the time waits a day": {
			when: time.Date(2026, 10, 19, 8, 30, 0, 0, saoPaulo),
			then: 24 * time.Hour,
		},
		"after the time waits for tomorrow": {
			when: time.Date(2026, 10, 19, 20, 30, 0, 0, saoPaulo),
			then: 12 * time.Hour,
		},
		"now in another zone": {
			when: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC), // 07:00 BRT
			then: 90 * time.Minute,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := d.Until(testcase.when); actual != testcase.then {
				t.Errorf("(actual, expected) = (%s, %s)", actual, testcase.then)
			}
		})
	}
}
