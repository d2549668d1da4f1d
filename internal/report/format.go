package report

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"buildprof/internal/tool"
)

var numbers = message.NewPrinter(language.English)

// UnitSuffix names the unit the way it appears in table headers.
func UnitSuffix(u tool.Unit) string {
	switch u {
	case tool.UnitMillis:
		return "ms"
	case tool.UnitSeconds:
		return "CPU seconds"
	case tool.UnitBytes:
		return "bytes"
	}
	return ""
}

// FormatValue renders a metric value with its unit. Zero renders as "-"
// so empty cells stay quiet in wide tables.
func FormatValue(u tool.Unit, v float64) string {
	if v == 0 {
		return "-"
	}
	switch u {
	case tool.UnitMillis:
		if v < 1000 {
			return fmt.Sprintf("%.0fms", v)
		}
		return fmt.Sprintf("%.2f sec", v/1000)
	case tool.UnitSeconds:
		return fmt.Sprintf("%.2f sec", v)
	case tool.UnitBytes:
		return formatBytes(v)
	}
	return numbers.Sprintf("%v", number(v))
}

// number keeps integral counts free of a trailing ".0".
func number(v float64) any {
	if v == float64(int64(v)) {
		return int64(v)
	}
	return v
}

func formatBytes(v float64) string {
	if v < 1024 {
		return fmt.Sprintf("%.0f bytes", v)
	}
	kb := v / 1024
	if kb < 1024 {
		return sized(kb, "KB")
	}
	mb := kb / 1024
	if mb < 1024 {
		return sized(mb, "MB")
	}
	return sized(mb/1024, "GB")
}

func sized(v float64, suffix string) string {
	switch {
	case v < 10:
		return fmt.Sprintf("%.2f %s", v, suffix)
	case v < 100:
		return fmt.Sprintf("%.1f %s", v, suffix)
	}
	return fmt.Sprintf("%.0f %s", v, suffix)
}
