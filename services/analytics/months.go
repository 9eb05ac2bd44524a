package analytics

import "time"

var monthLabels = map[string][12]string{
	"fr": {"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// MonthLabel returns the abbreviated month name for locale, defaulting to fr.
func MonthLabel(locale string, m time.Month) string {
	labels, ok := monthLabels[locale]
	if !ok {
		labels = monthLabels["fr"]
	}
	return labels[m-1]
}
