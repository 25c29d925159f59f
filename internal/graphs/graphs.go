// Package graphs рисует график активности кармы за месяц.
// Столбчатая диаграмма: день месяца → суммарное изменение кармы.
package graphs

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ruhich/point-bot/internal/features/karma"
)

// Generate рендерит PNG с графиком активности.
// Пустая серия — (nil, nil): рисовать нечего, это не ошибка.
func Generate(series []karma.DayActivity, chatID int64, year int, month time.Month) ([]byte, error) {
	if len(series) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(series))
	for _, d := range series {
		bars = append(bars, chart.Value{
			Value: float64(d.NetChange),
			Label: strconv.Itoa(d.Day),
		})
	}

	graph := chart.BarChart{
		Title:  fmt.Sprintf("Активность кармы в чате %d за %d/%d", chatID, int(month), year),
		Height: 512,
		Width:  1024,
		Background: chart.Style{
			Padding: chart.Box{Top: 48},
		},
		BarWidth: 24,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("ошибка рендеринга графика: %w", err)
	}
	return buf.Bytes(), nil
}
