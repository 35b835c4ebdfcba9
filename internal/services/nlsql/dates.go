package nlsql

import (
	"regexp"
	"strconv"
	"time"
)

// Год датасета по умолчанию - вопросы часто не называют год явно
const defaultYear = 2025

// Русские месяцы: родительный падеж ("28 ноября") и предложный ("в ноябре")
var monthNames = map[string]time.Month{
	"января": time.January, "январе": time.January,
	"февраля": time.February, "феврале": time.February,
	"марта": time.March, "марте": time.March,
	"апреля": time.April, "апреле": time.April,
	"мая": time.May, "мае": time.May,
	"июня": time.June, "июне": time.June,
	"июля": time.July, "июле": time.July,
	"августа": time.August, "августе": time.August,
	"сентября": time.September, "сентябре": time.September,
	"октября": time.October, "октябре": time.October,
	"ноября": time.November, "ноябре": time.November,
	"декабря": time.December, "декабре": time.December,
}

const monthPattern = `января|январе|февраля|феврале|марта|марте|апреля|апреле|мая|мае|июня|июне|июля|июле|августа|августе|сентября|сентябре|октября|октябре|ноября|ноябре|декабря|декабре`

var (
	creatorIDRe = regexp.MustCompile(`креатор[а-яё]*\s+с\s+id\s+([a-z0-9-]+)`)
	dayRangeRe  = regexp.MustCompile(`с\s+(\d{1,2})\s+(` + monthPattern + `)(?:\s+(\d{4}))?\s+по\s+(\d{1,2})\s+(?:` + monthPattern + `)(?:\s+(\d{4}))?`)
	singleDayRe = regexp.MustCompile(`(\d{1,2})\s+(` + monthPattern + `)(?:\s+(\d{4}))?`)
	hourRangeRe = regexp.MustCompile(`с\s+(\d{1,2}):(\d{2})\s+до\s+(\d{1,2}):(\d{2})`)
	monthRe     = regexp.MustCompile(monthPattern)
	yearRe      = regexp.MustCompile(`\b(20\d{2})\b`)
	thresholdRe = regexp.MustCompile(`больше\s+(\d+)`)
)

// findCreatorID извлекает идентификатор креатора ("креатора с id abc123")
func findCreatorID(q string) (string, bool) {
	m := creatorIDRe.FindStringSubmatch(q)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// findDayRange извлекает включительный диапазон дней одного месяца
// ("с 1 ноября 2025 по 5 ноября 2025") как [день1 00:00:00, день2 23:59:59] UTC
func findDayRange(q string) (from, to time.Time, ok bool) {
	m := dayRangeRe.FindStringSubmatch(q)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	day1, _ := strconv.Atoi(m[1])
	month := monthNames[m[2]]
	day2, _ := strconv.Atoi(m[4])
	year := defaultYear
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	} else if m[5] != "" {
		year, _ = strconv.Atoi(m[5])
	}
	from = time.Date(year, month, day1, 0, 0, 0, 0, time.UTC)
	to = time.Date(year, month, day2, 23, 59, 59, 0, time.UTC)
	return from, to, true
}

// findSingleDay извлекает один календарный день ("28 ноября 2025")
// как полуоткрытое окно [день 00:00, следующий день 00:00) UTC
func findSingleDay(q string) (start, next time.Time, ok bool) {
	m := singleDayRe.FindStringSubmatch(q)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month := monthNames[m[2]]
	year := defaultYear
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}
	start = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1), true
}

// findHourRange извлекает окно часов ("с 10:00 до 15:00")
// как смещения от начала дня, [from, to)
func findHourRange(q string) (from, to time.Duration, ok bool) {
	m := hourRangeRe.FindStringSubmatch(q)
	if m == nil {
		return 0, 0, false
	}
	fh, _ := strconv.Atoi(m[1])
	fm, _ := strconv.Atoi(m[2])
	th, _ := strconv.Atoi(m[3])
	tm, _ := strconv.Atoi(m[4])
	from = time.Duration(fh)*time.Hour + time.Duration(fm)*time.Minute
	to = time.Duration(th)*time.Hour + time.Duration(tm)*time.Minute
	return from, to, true
}

// findMonth извлекает месяц и год ("в ноябре 2025"); год опционален
func findMonth(q string) (year int, month time.Month, ok bool) {
	m := monthRe.FindString(q)
	if m == "" {
		return 0, 0, false
	}
	year = defaultYear
	if y := yearRe.FindStringSubmatch(q); y != nil {
		year, _ = strconv.Atoi(y[1])
	}
	return year, monthNames[m], true
}

// monthWindow возвращает границы месяца как [начало, начало следующего)
func monthWindow(year int, month time.Month) (start, next time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// findThreshold извлекает числовой порог ("больше 100000")
// Типовые пороги в вопросах - 1000, 10000 и 100000
func findThreshold(q string) (int64, bool) {
	m := thresholdRe.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
