package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// TimestampFormat keeps millisecond resolution and the zone, and sorts
// lexically.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatSimple Format = "simple"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSimple:
		return FormatSimple, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text, json or simple)", raw)
	}
}

type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New builds the process logger. An empty level means info.
func New(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	switch format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimestampFormat})
	case FormatSimple:
		logger.SetFormatter(SimpleFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		})
	}
	return logger, nil
}

// SimpleFormatter writes one human oriented line per entry:
// time LEVEL msg=... key=value, with keys sorted.
type SimpleFormatter struct{}

func (SimpleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(entry.Time.Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(strings.ToUpper(entry.Level.String()))
	sb.WriteString(" msg=")
	sb.WriteString(quote(entry.Message))

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(formatValue(entry.Data[key]))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return quote(v)
	case error:
		return quote(v.Error())
	case fmt.Stringer:
		return quote(v.String())
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return quote(fmt.Sprintf("%v", v))
	}
}

// quote wraps values containing spaces, or empty values, in single quotes.
func quote(v string) string {
	v = strings.ReplaceAll(v, "\n", "")
	if v == "" || strings.Contains(v, " ") {
		return "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	}
	return v
}
