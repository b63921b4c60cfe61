package bibliocommons

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/library-availability/internal/domain"
)

// Статусы экземпляра, при которых книгу можно взять прямо сейчас
var availableStatuses = map[string]struct{}{
	"AVAILABLE":      {},
	"IN":             {},
	"RETURNED TODAY": {},
}

// ParseSummary разбирает блок div.cp-circulation-info страницы записи.
// Отсутствующие поля дают пустую строку и нули.
func ParseSummary(html string) (domain.AvailabilitySummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.AvailabilitySummary{}, fmt.Errorf("failed to parse summary: %w", err)
	}

	return domain.AvailabilitySummary{
		StatusText: cellText(doc.Find(".cp-availability-status").First()),
		Copies:     countAt(doc, ".total-copies-count .circulation-count"),
		OnOrder:    countAt(doc, ".on-order-count .circulation-count"),
		Holds:      countAt(doc, ".on-hold-count .circulation-count"),
	}, nil
}

// ParseAvailableLocations возвращает филиалы, где есть экземпляр в доступном статусе.
// Порядок - по первому появлению, без повторов.
func ParseAvailableLocations(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse availability table: %w", err)
	}

	locations := []string{}
	seen := make(map[string]struct{})

	table := doc.Find("table.cp-table").First()
	table.Find("tbody tr.cp-table-row").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td.cp-table-cell")
		if cells.Length() < 4 {
			return
		}

		location := cleanCell(cells.Eq(0))
		status := strings.ToUpper(cleanCell(cells.Eq(3)))

		if _, ok := availableStatuses[status]; !ok || location == "" {
			return
		}
		if _, dup := seen[location]; dup {
			return
		}
		seen[location] = struct{}{}
		locations = append(locations, location)
	})

	return locations, nil
}

// cleanCell убирает подписи для мобильной вёрстки и возвращает текст ячейки
func cleanCell(cell *goquery.Selection) string {
	cell.Find("span.table-cell__label").Remove()
	return cellText(cell)
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func countAt(doc *goquery.Document, selector string) int {
	text := cellText(doc.Find(selector).First())
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
