// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с календарными месяцами и русская плюрализация.
package common

import "time"

// MonthLayout — формат метки месяца в БД ("2024-03").
const MonthLayout = "2006-01"

// MonthKey возвращает метку календарного месяца для момента t.
// Именно эта строка пишется в last_activity_month и сравнивается
// при ежемесячном сбросе кармы.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// CurrentMonthKey возвращает метку текущего месяца в заданном часовом поясе.
func CurrentMonthKey(loc *time.Location) string {
	return MonthKey(time.Now().In(loc))
}

// MonthBounds возвращает полуинтервал [начало месяца, начало следующего месяца)
// в поясе loc. Используется для выборки записей активности за месяц.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
