package aggregator

import "time"

// Simulated statistics, used whenever real journal data is unavailable or
// not wanted. Values are drawn from fixed ranges so the output looks like a
// plausible day of phone use: screen time 30-360 min, 15-99 app opens,
// 20-149 notifications, 10-49 unlocks, productivity score 0.3-0.9. Roughly
// one day in ten is skipped entirely to simulate inactive days.
//
// All draws go through the aggregator's seeded rng, so a fixed seed yields a
// reproducible sequence for tests.

func (a *Aggregator) simulatedScreenTime() time.Duration {
	return time.Duration(30+a.intn(330)) * time.Minute
}

func (a *Aggregator) simulatedAppOpens() int {
	return 15 + a.intn(85)
}

func (a *Aggregator) simulatedNotifications() int {
	return 20 + a.intn(130)
}

func (a *Aggregator) simulatedUnlocks() int {
	return 10 + a.intn(40)
}

func (a *Aggregator) simulatedProductivityScore() float64 {
	return 0.3 + a.float64()*0.6
}

func (a *Aggregator) simulatedDailySummaries(daysBack int) []*DailySummary {
	var summaries []*DailySummary
	now := a.now()

	for i := 0; i < daysBack; i++ {
		day := dayStart(now.AddDate(0, 0, -i))

		// ~10% of days are skipped entirely.
		if a.float64() < 0.1 {
			continue
		}

		summaries = append(summaries, &DailySummary{
			Date:              day,
			ScreenTime:        a.simulatedScreenTime(),
			AppOpens:          a.simulatedAppOpens(),
			Notifications:     a.simulatedNotifications(),
			Unlocks:           a.simulatedUnlocks(),
			ProductivityScore: a.simulatedProductivityScore(),
		})
	}

	return summaries
}

func (a *Aggregator) simulatedHourlyBreakdown() []*HourlySummary {
	var hours []*HourlySummary

	// Waking hours only, each present with ~80% probability.
	for hour := 9; hour <= 23; hour++ {
		if a.float64() >= 0.8 {
			continue
		}

		screenTime := time.Duration(5+a.intn(56)) * time.Minute
		productiveRatio := a.float64()
		productive := time.Duration(float64(screenTime) * productiveRatio)

		hours = append(hours, &HourlySummary{
			Hour:        hour,
			ScreenTime:  screenTime,
			AppOpens:    1 + a.intn(10),
			Productive:  productive,
			Distracting: screenTime - productive,
		})
	}

	return hours
}

// wellKnownApps seeds the simulated per-app summary with recognizable
// packages so the stats view reads naturally without journal data.
var wellKnownApps = []struct {
	pkg      string
	category Category
}{
	{"com.whatsapp", CategoryCommunication},
	{"com.instagram.android", CategorySocial},
	{"com.google.android.youtube", CategoryEntertainment},
	{"com.google.android.gm", CategoryProductivity},
	{"com.android.chrome", CategoryProductivity},
	{"com.facebook.katana", CategorySocial},
	{"com.twitter.android", CategorySocial},
	{"com.spotify.music", CategoryEntertainment},
	{"com.slack", CategoryProductivity},
	{"us.zoom.videomeetings", CategoryProductivity},
}

func (a *Aggregator) simulatedPerAppSummary() []*AppSummary {
	numApps := 6 + a.intn(5)
	if numApps > len(wellKnownApps) {
		numApps = len(wellKnownApps)
	}

	summaries := make([]*AppSummary, 0, numApps)
	for i := 0; i < numApps; i++ {
		app := wellKnownApps[i]
		summaries = append(summaries, &AppSummary{
			Package:    app.pkg,
			ScreenTime: time.Duration(5+a.intn(115)) * time.Minute,
			Opens:      1 + a.intn(20),
			Productive: app.category.Productive(),
			Category:   app.category,
		})
	}

	sortByScreenTime(summaries)
	return summaries
}
